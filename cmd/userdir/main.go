// Command userdir is an interactive shell over the sync engine: it loads
// the remote user directory (cache-first), then serves search,
// pagination and edit commands against the local projection.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"userdir/internal/config"
	"userdir/internal/domain/user"
	"userdir/internal/remote"
	"userdir/internal/repository"
	"userdir/internal/store"
	syncctl "userdir/internal/sync"
	"userdir/pkg/debounce"
	"userdir/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("userdir exited with error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	l, err := logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      os.Getenv("APP_ENV"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	st, err := newStore(cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	client := remote.New(cfg.API.BaseURL, l)
	repo := repository.New(client, st, cfg.API.PerPage, l)
	ctl := syncctl.New(repo, st, cfg.API.PerPage, l)

	watchObservables(ctl)

	ctx := context.Background()
	go func() {
		if err := ctl.LoadAll(ctx); err != nil {
			l.Error("initial load failed", zap.Error(err))
		}
	}()

	return repl(ctx, ctl, cfg, l)
}

func newStore(cfg *config.Config, l *zap.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, l)
	default:
		return store.NewSQLiteStore(store.SQLiteConfig{
			Path:             cfg.Store.SQLitePath,
			SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
			LogLevel:         cfg.Logger.Level,
		}, l)
	}
}

// watchObservables prints pages and errors as they arrive, off the
// command loop's goroutine.
func watchObservables(ctl *syncctl.Controller) {
	users, _ := ctl.Users().Subscribe()
	errors, _ := ctl.Errors().Subscribe()

	go func() {
		for page := range users {
			current, _ := ctl.CurrentPage().Get()
			total, _ := ctl.TotalPages().Get()
			count, _ := ctl.TotalUsers().Get()
			fmt.Printf("\n-- page %d/%d (%d users) --\n", current, total, count)
			for _, u := range page {
				fmt.Printf("  [%d] %s %s <%s>\n", u.ID, u.FirstName, u.LastName, u.Email)
			}
			fmt.Print("> ")
		}
	}()
	go func() {
		for msg := range errors {
			fmt.Printf("\nerror: %s\n> ", msg)
		}
	}()
}

func repl(ctx context.Context, ctl *syncctl.Controller, cfg *config.Config, l *zap.Logger) error {
	window := time.Duration(cfg.API.DebounceMS) * time.Millisecond

	// Mutations are debounced the way the original UI buttons were:
	// repeated presses inside the window collapse into one invocation.
	createAction := debounce.WrapWithWindow(func(u user.User) {
		go func() { _ = ctl.Create(ctx, u) }()
	}, window)
	deleteAction := debounce.WrapWithWindow(func(u user.User) {
		go func() { _ = ctl.Delete(ctx, u) }()
	}, window)
	updateAction := debounce.WrapWithWindow(func(u user.User) {
		go func() { _ = ctl.Update(ctx, u) }()
	}, window)

	fmt.Println("commands: list | search <q> | page <n> | create <first> <last> <email> | update <id> <first> <last> <email> | delete <id> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "list":
			go func() { _ = ctl.LoadAll(ctx) }()
		case "search":
			ctl.Search(strings.Join(fields[1:], " "))
		case "page":
			if len(fields) != 2 {
				fmt.Println("usage: page <n>")
				break
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("page must be a number")
				break
			}
			ctl.LoadPage(n)
		case "create":
			if len(fields) != 4 {
				fmt.Println("usage: create <first> <last> <email>")
				break
			}
			createAction.Trigger(user.User{FirstName: fields[1], LastName: fields[2], Email: fields[3]})
		case "update":
			if len(fields) != 5 {
				fmt.Println("usage: update <id> <first> <last> <email>")
				break
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("id must be a number")
				break
			}
			updateAction.Trigger(user.User{ID: id, FirstName: fields[2], LastName: fields[3], Email: fields[4]})
		case "delete":
			if len(fields) != 2 {
				fmt.Println("usage: delete <id>")
				break
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("id must be a number")
				break
			}
			deleteAction.Trigger(user.User{ID: id})
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
		fmt.Print("> ")
	}

	l.Info("input closed, shutting down")
	return scanner.Err()
}
