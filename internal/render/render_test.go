package render

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/model"
)

func sampleItem() model.UnifiedItem {
	return model.UnifiedItem{
		Headline:    "פשיטה על בית בושת ברמת גן",
		Summary:     "המשטרה פשטה הלילה על בית בושת ועצרה שלושה חשודים",
		Date:        time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		Category:    model.CategoryBrothel,
		SubCategory: model.SubCategoryClosure,
		Sources: []model.SourceRef{
			{SourceName: "ynet", URL: "https://news.example/1"},
			{SourceName: "walla", URL: "https://other.example/7"},
		},
	}
}

func TestFormatItem(t *testing.T) {
	out := FormatItem(sampleItem())

	assert.Contains(t, out, "🚨 פשיטה על בית בושת ברמת גן")
	assert.Contains(t, out, "תאריך: 2026-08-20")
	assert.Contains(t, out, "קטגוריה: בית בושת » סגירה")
	assert.Contains(t, out, "תקציר: המשטרה פשטה")
	assert.Contains(t, out, "• ynet: https://news.example/1")
	assert.Contains(t, out, "• walla: https://other.example/7")
}

func TestFormatItemTruncatesSummary(t *testing.T) {
	item := sampleItem()
	item.Summary = strings.Repeat("א", 500)

	out := FormatItem(item)
	assert.Contains(t, out, strings.Repeat("א", 300)+"...")
	assert.NotContains(t, out, strings.Repeat("א", 301))
}

func TestFormatCategory(t *testing.T) {
	assert.Equal(t, "בית בושת » סגירה", FormatCategory(model.CategoryBrothel, model.SubCategoryClosure))
	assert.Equal(t, "אכיפה", FormatCategory(model.CategoryEnforcement, model.SubCategoryNone))
	assert.Equal(t, "לא רלוונטי", FormatCategory(model.CategoryNotRelevant, model.SubCategoryNone))
}

func TestIconFallback(t *testing.T) {
	assert.Equal(t, "🚨", Icon(model.CategoryBrothel, model.SubCategoryClosure))
	assert.Equal(t, "🚨", Icon(model.CategoryBrothel, model.SubCategoryNone))
	assert.Equal(t, "❓", Icon(model.CategoryNotRelevant, model.SubCategoryNone))
	assert.Equal(t, "📰", Icon(model.Category("mystery"), model.SubCategoryNone))
}

func TestConsoleRenderSeparatesItems(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsole(&buf)
	ctx := context.Background()

	require.NoError(t, r.Render(ctx, sampleItem()))
	require.NoError(t, r.Render(ctx, sampleItem()))
	require.NoError(t, r.Finish(ctx, 2))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "פשיטה על בית בושת ברמת גן"))
	assert.Equal(t, 2, strings.Count(out, separator))
	assert.Contains(t, out, "סה״כ: 2 כתבות")
}

func TestConsoleFinishEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsole(&buf)

	require.NoError(t, r.Finish(context.Background(), 0))
	assert.Equal(t, "לא נמצאו כתבות רלוונטיות.\n", buf.String())
}

func TestTelegramRender(t *testing.T) {
	var got []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.URL.Path, "/bottoken123/sendMessage")
		got = append(got, map[string]string{
			"chat_id": r.FormValue("chat_id"),
			"text":    r.FormValue("text"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := &TelegramRenderer{
		botToken: "token123",
		chatID:   "-100555",
		apiBase:  srv.URL,
		client:   srv.Client(),
	}
	ctx := context.Background()

	require.NoError(t, r.Render(ctx, sampleItem()))
	require.NoError(t, r.Finish(ctx, 1))

	require.Len(t, got, 2)
	assert.Equal(t, "-100555", got[0]["chat_id"])
	assert.Contains(t, got[0]["text"], "פשיטה על בית בושת")
	assert.Contains(t, got[1]["text"], "סה״כ: 1 כתבות")
}

func TestTelegramRenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := &TelegramRenderer{botToken: "t", chatID: "c", apiBase: srv.URL, client: srv.Client()}
	assert.Error(t, r.Render(context.Background(), sampleItem()))
}

func TestTelegramFinishEmptySendsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	}))
	defer srv.Close()

	r := &TelegramRenderer{botToken: "t", chatID: "c", apiBase: srv.URL, client: srv.Client()}
	require.NoError(t, r.Finish(context.Background(), 0))
}

func TestNewTelegramRequiresCredentials(t *testing.T) {
	_, err := NewTelegram(config.TelegramConfig{ChatID: "c"})
	assert.Error(t, err)
	_, err = NewTelegram(config.TelegramConfig{BotToken: "t"})
	assert.Error(t, err)
	_, err = NewTelegram(config.TelegramConfig{BotToken: "t", ChatID: "c"})
	assert.NoError(t, err)
}
