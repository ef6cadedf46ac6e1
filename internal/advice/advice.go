// Package advice answers free-form questions about a store using a language
// model. Requests are keyed by the hash of their raw payload and cached.
package advice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

var (
	ErrMissingClientID = errors.New("missing client id")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrUpstream        = errors.New("advisor unavailable")
)

const DefaultQuery = "Dame recomendaciones para mejorar inventario y ventas esta semana."

const systemPrompt = `Eres un consultor experto para pequeños comercios minoristas en Argentina.
Responde SIEMPRE en español rioplatense, con consejos prácticos y breves.

Reglas:
- Sé conciso (máximo ~8 líneas).
- Prioriza: (1) stock crítico, (2) reposición, (3) precios/márgenes, (4) acciones rápidas hoy.
- Si falta información, pregunta 1 sola cosa puntual.`

//go:generate mockgen -source=advice.go -destination=advisor_mock.go -package=advice
type Advisor interface {
	// Advise returns the model's answer to prompt under the given instructions.
	Advise(ctx context.Context, instructions, prompt string) (string, error)
}

type Request struct {
	State     json.RawMessage `json:"state"`
	UserQuery *string         `json:"userQuery,omitempty"`
}

type Response struct {
	Answer string `json:"answer"`
}

type Config struct {
	MinClientIDLen  int
	MaxPayloadBytes int
	MaxQueryChars   int
	CacheTTL        time.Duration
	// CacheMaxEntries bounds the number of cached answers; the least recently
	// used one is evicted first.
	CacheMaxEntries int
	Timeout         time.Duration
}

type Service struct {
	advisor Advisor
	cfg     Config
	cache   *expirable.LRU[string, string]
}

func NewService(advisor Advisor, cfg Config) *Service {
	return &Service{
		advisor: advisor,
		cfg:     cfg,
		cache:   newAnswerCache(cfg.CacheMaxEntries, cfg.CacheTTL),
	}
}

// Advise validates the caller and payload, then answers from the cache or the
// advisor. Only successful answers are cached.
func (s *Service) Advise(ctx context.Context, clientID string, payload []byte) (*Response, error) {
	if len(clientID) < s.cfg.MinClientIDLen {
		return nil, ErrMissingClientID
	}

	if len(payload) > s.cfg.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	sum := sha256.Sum256(payload)
	key := hex.EncodeToString(sum[:])

	if s.cache != nil {
		if answer, ok := s.cache.Get(key); ok {
			return &Response{Answer: answer}, nil
		}
	}

	prompt, err := s.buildPrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	answer, err := s.advisor.Advise(ctx, systemPrompt, prompt)
	if err != nil {
		zap.S().Warnw("advisor call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if s.cache != nil {
		s.cache.Add(key, answer)
	}

	return &Response{Answer: answer}, nil
}

func (s *Service) buildPrompt(req Request) (string, error) {
	state := []byte("{}")

	if len(req.State) > 0 && string(req.State) != "null" {
		var buf strings.Builder

		var v any
		if err := json.Unmarshal(req.State, &v); err != nil {
			return "", fmt.Errorf("%w: state: %v", ErrInvalidPayload, err)
		}

		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("formatting state: %w", err)
		}

		state = []byte(strings.TrimSpace(buf.String()))
	}

	query := DefaultQuery
	if req.UserQuery != nil {
		query = truncate(*req.UserQuery, s.cfg.MaxQueryChars)
	}

	return fmt.Sprintf("Contexto (estado del negocio en JSON):\n%s\n\nConsulta del usuario:\n%s", state, query), nil
}

// truncate keeps at most n characters of s, counted in runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
