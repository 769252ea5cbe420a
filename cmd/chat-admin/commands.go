package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"roomchat/internal/config"
	"roomchat/internal/domain"
	"roomchat/internal/messaging"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}
	return nil
}

// requireID checks that a flag holds a UUID and returns it canonicalized
func requireID(flagName, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: -%s is required", errUsage, flagName)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("-%s: %q is not a valid id", flagName, value)
	}
	return id.String(), nil
}

func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}

func createRoom(ctx context.Context, s store, args []string, out io.Writer) error {
	fs := newFlagSet("create-room")
	name := fs.String("name", "", "chat room name")
	members := fs.String("members", "", "comma-separated user ids to add")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("%w: -name is required", errUsage)
	}

	userIDs := make([]string, 0)
	for _, m := range splitList(*members) {
		id, err := requireID("members", m)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}

	room := &domain.ChatRoom{Name: *name}
	if err := s.rooms.Create(ctx, room); err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}
	for _, userID := range userIDs {
		if err := s.participants.Add(ctx, &domain.Participant{UserID: userID, ChatRoomID: room.ID}); err != nil {
			return fmt.Errorf("failed to add participant %s: %w", userID, err)
		}
	}

	fmt.Fprintln(out, room.ID)
	return nil
}

func deleteRoom(ctx context.Context, s store, args []string, out io.Writer) error {
	fs := newFlagSet("delete-room")
	room := fs.String("room", "", "chat room id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	roomID, err := requireID("room", *room)
	if err != nil {
		return err
	}

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", roomID)
	return nil
}

func membershipFlags(name string, args []string) (roomID, userID string, err error) {
	fs := newFlagSet(name)
	room := fs.String("room", "", "chat room id")
	user := fs.String("user", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return "", "", err
	}
	if roomID, err = requireID("room", *room); err != nil {
		return "", "", err
	}
	if userID, err = requireID("user", *user); err != nil {
		return "", "", err
	}
	return roomID, userID, nil
}

func addParticipant(ctx context.Context, s store, args []string, out io.Writer) error {
	roomID, userID, err := membershipFlags("add-participant", args)
	if err != nil {
		return err
	}

	p := &domain.Participant{UserID: userID, ChatRoomID: roomID}
	if err := s.participants.Add(ctx, p); err != nil {
		return err
	}
	fmt.Fprintln(out, p.ID)
	return nil
}

func removeParticipant(ctx context.Context, s store, args []string, out io.Writer) error {
	roomID, userID, err := membershipFlags("remove-participant", args)
	if err != nil {
		return err
	}

	if err := s.participants.Remove(ctx, roomID, userID); err != nil {
		return err
	}
	fmt.Fprintf(out, "removed %s from %s\n", userID, roomID)
	return nil
}

func listParticipants(ctx context.Context, s store, args []string, out io.Writer) error {
	fs := newFlagSet("list-participants")
	room := fs.String("room", "", "chat room id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	roomID, err := requireID("room", *room)
	if err != nil {
		return err
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return err
	}
	participants, err := s.participants.ListByChatRoom(ctx, roomID)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"User", "Joined"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, p := range participants {
		table.Append([]string{p.UserID, p.JoinedAt.UTC().Format(time.RFC3339)})
	}
	table.Render()
	return nil
}

func tailEvents(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("tail-events")
	keys := fs.String("keys", "", "comma-separated routing keys, default all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !cfg.EventsEnabled() {
		return fmt.Errorf("RABBITMQ_URL is not set")
	}

	rmq, err := messaging.NewRabbitMQWithRetry(ctx, cfg.RabbitMQURL, 10*time.Second)
	if err != nil {
		return err
	}
	defer rmq.Close()

	enc := json.NewEncoder(out)
	consumer := messaging.NewEventConsumer(rmq, splitList(*keys)...)
	if err := consumer.Start(ctx, func(_ context.Context, e *messaging.Event) {
		_ = enc.Encode(e)
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
