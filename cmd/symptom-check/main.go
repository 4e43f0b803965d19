package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skufu/SymptomTriage/internal/client"
)

func main() {
	_ = godotenv.Load()

	endpoint := flag.String("url", getEnv("TRIAGE_API_URL", client.DefaultEndpoint), "prediction endpoint")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	brief := flag.Bool("brief", false, "print only the predicted disease sentence")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		raw, err := readAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		text = raw
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, `usage: symptom-check [-url URL] "fever, cough"`)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := check(ctx, client.New(*endpoint, nil), text, *brief, os.Stdout); err != nil {
		log.Fatalf("symptom check failed: %v", err)
	}
}

// check runs the symptom checker tool. Unless brief is set the advice text is
// printed as well.
func check(ctx context.Context, c *client.Client, text string, brief bool, out io.Writer) error {
	if brief {
		answer, err := c.CheckSymptoms(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)
		return nil
	}

	p, err := c.Predict(ctx, client.ParseSymptoms(text))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "The predicted disease is: %s\n", p.Disease)
	fmt.Fprintf(out, "Advice: %s\n", p.Advice)
	return nil
}

func readAll(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		b.WriteString(sc.Text())
		b.WriteString("\n")
	}
	return b.String(), sc.Err()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
