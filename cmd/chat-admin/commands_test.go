package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"roomchat/internal/config"
	"roomchat/internal/domain"
	"roomchat/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStore() (store, *testutil.MemoryStore) {
	mem := testutil.NewMemoryStore()
	return store{rooms: mem, participants: mem}, mem
}

func runCmd(t *testing.T, s store, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runStoreCommand(context.Background(), s, args[0], args[1:], &out)
	return out.String(), err
}

func TestCreateRoom(t *testing.T) {
	s, mem := memoryStore()
	alice, bob := testutil.NewUserID(), testutil.NewUserID()

	out, err := runCmd(t, s, "create-room", "-name", "general", "-members", alice+", "+bob+","+alice)
	require.NoError(t, err)

	roomID := strings.TrimSpace(out)
	room, err := mem.GetByID(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, "general", room.Name)

	participants, err := mem.ListByChatRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestCreateRoom_Errors(t *testing.T) {
	s, _ := memoryStore()

	_, err := runCmd(t, s, "create-room")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, s, "create-room", "-name", "x", "-members", "not-a-uuid")
	assert.ErrorContains(t, err, "not a valid id")

	_, err = runCmd(t, s, "create-room", "-bogus")
	assert.ErrorIs(t, err, errUsage)
}

func TestParticipantCommands(t *testing.T) {
	s, mem := memoryStore()
	alice := testutil.NewUserID()
	roomID := testutil.SeedRoom(t, mem)

	_, err := runCmd(t, s, "add-participant", "-room", roomID, "-user", alice)
	require.NoError(t, err)

	_, err = runCmd(t, s, "add-participant", "-room", roomID, "-user", alice)
	assert.ErrorIs(t, err, domain.ErrAlreadyParticipant)

	out, err := runCmd(t, s, "list-participants", "-room", roomID)
	require.NoError(t, err)
	assert.Contains(t, out, "USER")
	assert.Contains(t, out, alice)

	_, err = runCmd(t, s, "remove-participant", "-room", roomID, "-user", alice)
	require.NoError(t, err)

	_, err = runCmd(t, s, "remove-participant", "-room", roomID, "-user", alice)
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)

	_, err = runCmd(t, s, "add-participant", "-room", roomID)
	assert.ErrorIs(t, err, errUsage)
}

func TestListParticipants_UnknownRoom(t *testing.T) {
	s, _ := memoryStore()

	_, err := runCmd(t, s, "list-participants", "-room", testutil.NewUserID())
	assert.ErrorIs(t, err, domain.ErrChatRoomNotFound)
}

func TestDeleteRoom(t *testing.T) {
	s, mem := memoryStore()
	roomID := testutil.SeedRoom(t, mem, testutil.NewUserID())

	out, err := runCmd(t, s, "delete-room", "-room", roomID)
	require.NoError(t, err)
	assert.Contains(t, out, roomID)

	_, err = mem.GetByID(context.Background(), roomID)
	assert.ErrorIs(t, err, domain.ErrChatRoomNotFound)

	_, err = runCmd(t, s, "delete-room", "-room", roomID)
	assert.ErrorIs(t, err, domain.ErrChatRoomNotFound)
}

func TestUnknownCommand(t *testing.T) {
	s, _ := memoryStore()

	_, err := runCmd(t, s, "shout")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_NoArgs(t *testing.T) {
	err := run(context.Background(), config.Default(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
}

func TestTailEvents_Disabled(t *testing.T) {
	err := run(context.Background(), config.Default(), []string{"tail-events"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}

func TestSplitList(t *testing.T) {
	assert.Empty(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, b ,,a"))
}
