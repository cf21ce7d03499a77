package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/history"
	"chat-translator/internal/profile"
)

type Coordinator interface {
	RegisterUser(ctx context.Context, userID, targetLanguage string) (profile.UserProfile, error)
	TranslateTurn(ctx context.Context, userID, text string) (history.SessionEntry, error)
	History(userID string) ([]history.SessionEntry, error)
}

type RegisterUserParams struct {
	UserID         string `json:"user_id" mcp:"identifier of the user"`
	TargetLanguage string `json:"target_language" mcp:"language code to translate into, e.g. 'es' or 'pt-BR'"`
}

type TranslateTextParams struct {
	UserID string `json:"user_id" mcp:"identifier of a registered user"`
	Text   string `json:"text" mcp:"text to translate into the user's target language"`
}

type GetHistoryParams struct {
	UserID string `json:"user_id" mcp:"identifier of a registered user"`
	Limit  int    `json:"limit,omitempty" mcp:"maximum number of latest entries to return (default: 10)"`
}

const defaultHistoryLimit = 10

// Server exposes the coordinator as MCP tools.
type Server struct {
	coord Coordinator
	log   *zap.Logger
}

func New(coord Coordinator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{coord: coord, log: log.Named("mcp")}
}

// Register adds every tool to server.
func (s *Server) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "register_user",
		Description: "Registers a user or changes the target language of an existing one",
	}, s.RegisterUser)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "translate_text",
		Description: "Detects the language of text, translates it into the user's target language and records the exchange",
	}, s.TranslateText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_history",
		Description: "Returns the latest recorded translations of a user",
	}, s.GetHistory)
}

func (s *Server) RegisterUser(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[RegisterUserParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	p, err := s.coord.RegisterUser(ctx, args.UserID, args.TargetLanguage)
	if err != nil {
		return s.errorResult("register_user", err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("User %s registered with target language %s", p.UserID, p.TargetLanguage)},
		},
		Meta: map[string]any{
			"user_id":         p.UserID,
			"target_language": p.TargetLanguage,
		},
	}, nil
}

func (s *Server) TranslateText(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[TranslateTextParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	entry, err := s.coord.TranslateTurn(ctx, args.UserID, args.Text)
	if err != nil {
		return s.errorResult("translate_text", err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: entry.TranslatedText},
		},
		Meta: map[string]any{
			"source_language": entry.SourceLanguage,
			"target_language": entry.TargetLanguage,
			"timestamp":       entry.Timestamp.Format(time.RFC3339),
		},
	}, nil
}

func (s *Server) GetHistory(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[GetHistoryParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	entries, err := s.coord.History(args.UserID)
	if err != nil {
		return s.errorResult("get_history", err), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("No translations recorded")
	}
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s [%s->%s] %s => %s",
			e.Timestamp.Format(time.RFC3339), e.SourceLanguage, e.TargetLanguage, e.SourceText, e.TranslatedText)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
		Meta:    map[string]any{"count": len(entries)},
	}, nil
}

// errorResult reports failures in-band so the client model can react.
func (s *Server) errorResult(tool string, err error) *mcp.CallToolResultFor[any] {
	code := errs.Code(err)
	s.log.Warn("tool failed", zap.String("tool", tool), zap.String("code", code), zap.Error(err))
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s: %v", code, err)},
		},
	}
}
