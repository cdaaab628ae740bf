package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/cli"
)

const envFile = "SECRETCRYPT_ENV_FILE"

func main() {
	if err := loadEnv(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
		os.Exit(1)
	}

	var root cli.RootCmd
	err := root.Command().Invoke(os.Args[1:]...).WithOS().Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv reads variables from the file named by SECRETCRYPT_ENV_FILE, or
// from ./.env when it exists. Variables already set in the environment win.
func loadEnv() error {
	if name := os.Getenv(envFile); name != "" {
		return godotenv.Load(name)
	}
	err := godotenv.Load()
	if xerrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
