package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/history"
	"chat-translator/internal/profile"
)

type Coordinator interface {
	RegisterUser(ctx context.Context, userID, targetLanguage string) (profile.UserProfile, error)
	ResolveUser(userID string) (profile.UserProfile, error)
	TranslateTurn(ctx context.Context, userID, text string) (history.SessionEntry, error)
	History(userID string) ([]history.SessionEntry, error)
}

// MaxLineBytes bounds a single input line. Longer lines are discarded with
// an error message and the session goes on.
const MaxLineBytes = 1 << 20

var errLineTooLong = errors.New("line too long")

// Session is an interactive chat loop over a line-oriented reader.
type Session struct {
	coord Coordinator
	in    *bufio.Reader
	inErr error
	out   io.Writer
	log   *zap.Logger
}

func New(coord Coordinator, in io.Reader, out io.Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{coord: coord, in: bufio.NewReader(in), out: out, log: log.Named("console")}
}

// Run registers or resumes a user and then translates each line until
// "exit", end of input or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.println("Welcome to the Conversational Translator!")

	p, ok, err := s.login(ctx)
	if err != nil || !ok {
		return err
	}

	s.println("Type 'exit' to end the conversation. Commands: /lang <code>, /history")
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := s.prompt("You: ")
		if !ok {
			return s.inErr
		}
		switch {
		case strings.EqualFold(line, "exit"):
			s.println("Goodbye!")
			return nil
		case line == "":
			continue
		case line == "/lang" || strings.HasPrefix(line, "/lang "):
			code := strings.TrimSpace(strings.TrimPrefix(line, "/lang"))
			updated, err := s.coord.RegisterUser(ctx, p.UserID, code)
			if err != nil {
				s.printError(err)
				continue
			}
			p = updated
			s.println("Target language set to " + p.TargetLanguage + ".")
		case line == "/history":
			entries, err := s.coord.History(p.UserID)
			if err != nil {
				s.printError(err)
				continue
			}
			s.printHistory(entries)
		default:
			entry, err := s.coord.TranslateTurn(ctx, p.UserID, line)
			if err != nil {
				s.printError(err)
				continue
			}
			s.println("Translated Text: " + entry.TranslatedText)
		}
	}
}

// login returns false when input ends (or the user types exit) before a
// user is established.
func (s *Session) login(ctx context.Context) (profile.UserProfile, bool, error) {
	for {
		userID, ok := s.prompt("Enter your user ID (a new ID registers you): ")
		if !ok || strings.EqualFold(userID, "exit") {
			return profile.UserProfile{}, false, s.inErr
		}
		if userID == "" {
			continue
		}
		if p, err := s.coord.ResolveUser(userID); err == nil {
			s.println(fmt.Sprintf("Welcome back, %s! Translating into %s.", p.UserID, p.TargetLanguage))
			return p, true, nil
		}

		for {
			lang, ok := s.prompt("Target language code (for example es, fr, de): ")
			if !ok || strings.EqualFold(lang, "exit") {
				return profile.UserProfile{}, false, s.inErr
			}
			p, err := s.coord.RegisterUser(ctx, userID, lang)
			if err == nil {
				s.println(fmt.Sprintf("Registered %s, translating into %s.", p.UserID, p.TargetLanguage))
				return p, true, nil
			}
			s.printError(err)
		}
	}
}

// prompt returns false at end of input; a read failure other than EOF is
// kept in inErr.
func (s *Session) prompt(label string) (string, bool) {
	for {
		fmt.Fprint(s.out, label)
		line, err := s.readLine()
		if errors.Is(err, errLineTooLong) {
			s.log.Warn("input line discarded", zap.Int("max_bytes", MaxLineBytes))
			s.println(fmt.Sprintf("Error: input longer than %d bytes was ignored", MaxLineBytes))
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.inErr = err
			}
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

// readLine consumes a whole line even when it exceeds MaxLineBytes, so the
// next prompt starts at the following line.
func (s *Session) readLine() (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := s.in.ReadLine()
		if err != nil {
			return "", err
		}
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineBytes {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", errLineTooLong
	}
	return string(buf), nil
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Session) printError(err error) {
	s.log.Debug("turn error", zap.String("code", errs.Code(err)), zap.Error(err))
	s.println("Error: " + err.Error())
}

func (s *Session) printHistory(entries []history.SessionEntry) {
	if len(entries) == 0 {
		s.println("No translations yet.")
		return
	}
	for _, e := range entries {
		s.println(fmt.Sprintf("%s [%s->%s] %s => %s",
			e.Timestamp.Format(time.RFC3339), e.SourceLanguage, e.TargetLanguage, e.SourceText, e.TranslatedText))
	}
}
