// Command chat-admin manages chat rooms and their participants and tails
// the chat event stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomchat/internal/config"
	"roomchat/internal/domain"
	"roomchat/internal/observability"
	"roomchat/internal/repository/postgres"
)

const usage = `usage: chat-admin <command> [flags]

commands:
  create-room         -name NAME [-members ID,ID...]
  delete-room         -room ID
  add-participant     -room ID -user ID
  remove-participant  -room ID -user ID
  list-participants   -room ID
  tail-events         [-keys message.sent,messages.read]
`

var errUsage = errors.New("invalid usage")

// store is the slice of the repository layer the admin commands need
type store struct {
	rooms        domain.ChatRoomRepository
	participants domain.ParticipantRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.LogLevel, "text")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	if cmd == "tail-events" {
		return tailEvents(ctx, cfg, args, out)
	}

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := config.NewPostgresConnection(connCtx, cfg.DatabaseURL, cfg.Pool(), 10*time.Second)
	if err != nil {
		return err
	}
	defer db.Close()

	s := store{
		rooms:        postgres.NewChatRoomRepository(db),
		participants: postgres.NewParticipantRepository(db),
	}
	return runStoreCommand(ctx, s, cmd, args, out)
}

func runStoreCommand(ctx context.Context, s store, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "create-room":
		return createRoom(ctx, s, args, out)
	case "delete-room":
		return deleteRoom(ctx, s, args, out)
	case "add-participant":
		return addParticipant(ctx, s, args, out)
	case "remove-participant":
		return removeParticipant(ctx, s, args, out)
	case "list-participants":
		return listParticipants(ctx, s, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
