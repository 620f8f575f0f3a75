// Command tokengen signs bearer tokens for local development and tests.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/templatecore/core/internal/auth"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		subject int64
		ttl     time.Duration
		secret  string
	)
	flagSet := pflag.NewFlagSet("tokengen", pflag.ContinueOnError)
	flagSet.Int64Var(&subject, "subject", 1, "user id placed in the sub claim")
	flagSet.DurationVar(&ttl, "ttl", time.Hour, "token lifetime, 0 for no expiry")
	flagSet.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "base64 signing secret (default $JWT_SECRET)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if subject <= 0 {
		return errors.New("subject must be positive")
	}

	signer, err := auth.NewSigner(secret)
	if err != nil {
		return err
	}
	token, err := signer.Sign(subject, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
