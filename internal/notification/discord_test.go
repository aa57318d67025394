package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscord_BatchSummary(t *testing.T) {
	var got []DiscordMessage
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg DiscordMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		got = append(got, msg)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL+"/error", srv.URL+"/success")
	ctx := context.Background()

	require.NoError(t, d.SendBatchSummary(ctx, "L2-CMIPF atacama", 4, nil))
	require.NoError(t, d.SendBatchSummary(ctx, "L2-CMIPF atacama", 4, []string{"B02 17:00", "B03 17:00"}))

	require.Len(t, got, 2)
	assert.Equal(t, []string{"/success", "/error"}, paths)
	assert.Equal(t, colorGreen, got[0].Embeds[0].Color)
	assert.Contains(t, got[0].Embeds[0].Description, "all 4 files")
	assert.Equal(t, colorRed, got[1].Embeds[0].Color)
	assert.Contains(t, got[1].Embeds[0].Description, "2 of 4 files failed")
	assert.Contains(t, got[1].Embeds[0].Description, "B03 17:00")
}

func TestDiscord_Disabled(t *testing.T) {
	d := NewDiscord("", "")
	assert.False(t, d.Enabled())
	assert.NoError(t, d.SendError(context.Background(), "nobody listens"))

	var nilDiscord *Discord
	assert.NoError(t, nilDiscord.SendSuccess(context.Background(), "x"))
}

func TestDiscord_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewDiscord(srv.URL, "").SendError(context.Background(), strings.Repeat("x", 5000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
