package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/diamondbase/internal/db"
	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// initLedger creates a new database, applies the schema, creates the deployer
// account and deploys the ledger with it as owner. An empty password is
// replaced with a generated one, which is returned.
func initLedger(path, password string) (*sql.DB, model.Address, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(format string, err error) (*sql.DB, model.Address, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", "", fmt.Errorf(format, err)
	}

	if err := db.Migrate(database); err != nil {
		return fail("migrating schema: %w", err)
	}

	if password == "" {
		password, err = generatePassword(16)
		if err != nil {
			return fail("generating password: %w", err)
		}
	} else if err := model.ValidatePassword(password); err != nil {
		return fail("deployer password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail("hashing password: %w", err)
	}

	address, err := model.NewAddress()
	if err != nil {
		return fail("generating address: %w", err)
	}

	ctx := context.Background()
	if _, err := store.CreateAccount(ctx, database, address, string(hash), nil); err != nil {
		return fail("creating deployer account: %w", err)
	}

	if err := ledger.New(database).Deploy(ctx, address); err != nil {
		return fail("deploying ledger: %w", err)
	}

	return database, address, password, nil
}

// printInitResult prints the ledger initialization result to stdout.
func printInitResult(dbPath string, address model.Address, password string, generated bool) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized, ledger deployed.")
	fmt.Println()
	fmt.Println("Owner account created (also enrolled as Miner):")
	fmt.Printf("  Address:  %s\n", address)
	if generated {
		fmt.Printf("  Password: %s\n", password)
		fmt.Println()
		fmt.Println("Save this password, it cannot be recovered.")
		fmt.Println("The owner can change it after logging in.")
	}
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
