// Command cognito-session inspects and clears session namespaces persisted by a
// goCognito engine in Redis.
//
// Usage:
//
//	cognito-session [flags] keys
//	cognito-session [flags] status <store-key>
//	cognito-session [flags] logout <store-key>
//
// logout removes the namespace locally. It does not revoke tokens at the provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/MrEthical07/goCognito/session"
	"github.com/MrEthical07/goCognito/storage"
	"github.com/redis/go-redis/v9"
)

const lastAuthUserSuffix = ".LastAuthUser"

var errUsage = errors.New("usage: cognito-session [flags] keys | status <store-key> | logout <store-key>")

func main() {
	var (
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or localhost:6379 is used")
		prefix    = flag.String("prefix", "gcs", "redis key prefix of the session namespaces")
		timeout   = flag.Duration("timeout", 5*time.Second, "deadline for each command")
		verbose   = flag.Bool("v", false, "log storage activity")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := storage.NewRedisStore(client, *prefix, 0)
	if err := run(ctx, os.Stdout, store, logger, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type sessionStore interface {
	storage.KeyValueStore
	Keys(ctx context.Context) ([]string, error)
}

func run(ctx context.Context, out io.Writer, store sessionStore, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "keys":
		keys, err := store.Keys(ctx)
		if err != nil {
			return err
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	case "status":
		if len(args) != 2 {
			return errUsage
		}
		return status(ctx, out, store, logger, args[1])
	case "logout":
		if len(args) != 2 {
			return errUsage
		}
		return logout(ctx, out, store, logger, args[1])
	default:
		return errUsage
	}
}

func status(ctx context.Context, out io.Writer, store sessionStore, logger *slog.Logger, storeKey string) error {
	adapter := storage.NewAdapter(store, storeKey, logger)
	defer adapter.Close(context.WithoutCancel(ctx))
	adapter.Sync(ctx)

	raw, err := store.Fetch(ctx, storeKey)
	if err != nil {
		return err
	}
	clients := clientIDs(raw)
	if len(clients) == 0 {
		fmt.Fprintf(out, "%s: no signed-in user\n", storeKey)
		return nil
	}

	now := time.Now()
	for _, clientID := range clients {
		cache := session.NewTokenCache(adapter, clientID)
		username, _ := cache.LastAuthUser()
		sess, err := cache.Load(username)
		if err != nil {
			fmt.Fprintf(out, "client=%s user=%s session=missing\n", clientID, username)
			continue
		}
		state := "expired"
		if sess.IsValid(now) {
			state = "valid"
		}
		fmt.Fprintf(out, "client=%s user=%s sub=%s session=%s expires=%s drift=%s\n",
			clientID, username, sess.Subject(), state, sess.ExpiresAt().UTC().Format(time.RFC3339), sess.ClockDrift)
	}
	return nil
}

func logout(ctx context.Context, out io.Writer, store sessionStore, logger *slog.Logger, storeKey string) error {
	adapter := storage.NewAdapter(store, storeKey, logger)
	adapter.Sync(ctx)
	removed := adapter.Len()
	adapter.Clear()
	if err := adapter.Close(ctx); err != nil {
		return fmt.Errorf("clear %s: %w", storeKey, err)
	}
	fmt.Fprintf(out, "%s: removed %d items\n", storeKey, removed)
	return nil
}

// clientIDs returns the app client ids that have a last authenticated user recorded.
func clientIDs(items map[string]string) []string {
	var out []string
	for k := range items {
		rest, ok := strings.CutPrefix(k, session.KeyPrefix+".")
		if !ok {
			continue
		}
		if id, ok := strings.CutSuffix(rest, lastAuthUserSuffix); ok && !strings.Contains(id, ".") {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
