package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gambler/wagering/cmd"
	"gambler/wagering/config"
	"gambler/wagering/database"
	"gambler/wagering/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func main() {
	configureLogging()

	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Ledger funding for operators
	if len(os.Args) > 1 && os.Args[1] == "ledger-credit" {
		if err := handleLedgerCredit(); err != nil {
			log.Fatal("Ledger credit error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func configureLogging() {
	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: wagering migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleLedgerCredit() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: wagering ledger-credit user-id amount")
	}
	userID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", os.Args[2], err)
	}
	amount, err := decimal.NewFromString(os.Args[3])
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("amount must be a positive decimal, got %q", os.Args[3])
	}

	ctx := context.Background()
	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ledger := repository.NewLedgerRepository(db)
	if err := ledger.Credit(ctx, userID, amount); err != nil {
		return err
	}
	balance, err := ledger.Balance(ctx, userID)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"amount":  amount.String(),
		"balance": balance.String(),
	}).Info("Ledger account credited")
	return nil
}
