// dap-console is a small operator CLI over the account and link stores,
// wired the same way a Lambda handler or an HTTP server would be: load
// config, build the container, run one operation, exit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"curity-identity-dap/domain/account"
	"curity-identity-dap/infrastructure/config"
	"curity-identity-dap/infrastructure/di"
	"curity-identity-dap/infrastructure/persistence"
	"curity-identity-dap/pkg/scimfilter"

	"go.uber.org/zap"
)

func main() {
	command := flag.String("cmd", "", "one of: create-account, get-account, list-accounts, delete-account")
	userName := flag.String("username", "", "userName for create-account")
	email := flag.String("email", "", "email for create-account")
	accountID := flag.String("id", "", "accountId for get-account/delete-account")
	flag.Parse()

	if *command == "" {
		fmt.Fprintln(os.Stderr, "usage: dap-console -cmd=<create-account|get-account|list-accounts|delete-account> [flags]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing dependency container: %v", err)
	}
	defer container.Logger.Sync()

	if err := run(ctx, container.AccountStore, container.Logger, *command, *userName, *email, *accountID); err != nil {
		container.Logger.Error("command failed", zap.String("command", *command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, store *persistence.AccountStore, logger *zap.Logger, command, userName, email, accountID string) error {
	switch command {
	case "create-account":
		if userName == "" {
			return fmt.Errorf("-username is required for create-account")
		}
		created, err := store.Create(ctx, account.Attributes{UserName: userName, Email: email, Active: true})
		if err != nil {
			return err
		}
		return printJSON(created)

	case "get-account":
		if accountID == "" {
			return fmt.Errorf("-id is required for get-account")
		}
		found, err := store.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("no such account: %s", accountID)
		}
		return printJSON(found)

	case "list-accounts":
		results, err := store.GetAll(ctx, persistence.ResourceQuery{Filter: scimfilter.And{}, SortBy: "userName"})
		if err != nil {
			return err
		}
		return printJSON(results)

	case "delete-account":
		if accountID == "" {
			return fmt.Errorf("-id is required for delete-account")
		}
		return store.Delete(ctx, accountID)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
