package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Huahuatgc/ribao/internal/fetch"
	"github.com/Huahuatgc/ribao/internal/report"
)

const hitokotoURL = "https://v3.alapi.cn/api/hitokoto"

// Quote fetches the quote of the day from the token-gated hitokoto API.
type Quote struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
	token  string
}

// NewQuote creates the quote fetcher.
func NewQuote(client *fetch.Client, token string, logger *slog.Logger) *Quote {
	return &Quote{
		client: client,
		logger: logger.With("source", "quote"),
		url:    hitokotoURL,
		token:  token,
	}
}

type hitokotoPayload struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Hitokoto string `json:"hitokoto"`
		From     string `json:"from"`
		FromWho  string `json:"from_who"`
	} `json:"data"`
}

// Fetch returns the quote with its attribution normalized: a blank
// attribution or the literal "网络" becomes "佚名".
func (s *Quote) Fetch(ctx context.Context, _ int) (report.Quote, error) {
	req := fetch.Request{
		URL:   s.url,
		Query: url.Values{"token": {s.token}},
	}

	var payload hitokotoPayload
	if err := s.client.GetJSON(ctx, req, &payload); err != nil {
		return report.Quote{}, err
	}
	if (payload.Code != 200 && !payload.Success) || payload.Data == nil {
		return report.Quote{}, &fetch.ParseError{
			URL: s.url,
			Err: fmt.Errorf("unexpected response: code=%d success=%v message=%q",
				payload.Code, payload.Success, payload.Message),
		}
	}

	attribution := payload.Data.From
	if attribution == "" {
		attribution = payload.Data.FromWho
	}
	attribution = strings.TrimSpace(attribution)
	if attribution == "" || attribution == "网络" {
		attribution = "佚名"
	}

	return report.Quote{
		Text:        payload.Data.Hitokoto,
		Attribution: attribution,
	}, nil
}

// Fallback returns the fixed placeholder quote.
func (s *Quote) Fallback(_ int) report.Quote {
	return report.Quote{
		Text:        "生活就像骑自行车，想保持平衡就得往前走。",
		Attribution: "未知",
	}
}
