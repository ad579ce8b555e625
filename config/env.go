package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/everydev1618/goaltair/llm"
)

// DefaultHistoryMaxTurns is how many exchanges each chat retains.
const DefaultHistoryMaxTurns = 10

// ErrMissingToken reports an unset bot token.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

// Env holds settings read from the process environment. Load .env files
// first with LoadDotenv, or call LoadEnv to do both.
type Env struct {
	// TelegramBotToken authenticates the bot with Telegram. Required to
	// run the bot, not for one-shot use.
	TelegramBotToken string

	// Provider overrides the crew file's LLM provider when set.
	Provider string

	// Provider credentials and model overrides.
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	// SerpAPIKey enables the web_search tool.
	SerpAPIKey string

	// Paths to Google Calendar OAuth files. Both must be set for the
	// calendar tools to authenticate.
	CalendarCredentials string
	CalendarToken       string

	// AllowedChatIDs restricts which chats the bot answers. Empty allows
	// all chats.
	AllowedChatIDs []int64

	// AdminChatID receives the startup ping in test mode.
	AdminChatID int64

	// TestMode switches on the startup ping to the admin chat.
	TestMode bool

	// HistoryMaxTurns caps retained exchanges per chat. Zero keeps
	// everything.
	HistoryMaxTurns int

	// DBPath is the SQLite file for conversation history. Empty keeps
	// history in memory only.
	DBPath string
}

// LoadEnv loads .env files and reads settings from the process environment.
func LoadEnv() (*Env, error) {
	if err := LoadDotenv(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// LoadDotenv loads a .env.test file when one exists near the process,
// switching on test mode, and otherwise falls back to .env in the working
// directory. Variables already set in the environment win. Missing files
// are fine.
func LoadDotenv() error {
	for _, dir := range dotenvDirs() {
		path := filepath.Join(dir, ".env.test")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		os.Setenv("TEST_MODE", "True")
		return nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

// dotenvDirs lists where .env.test is searched for: the working directory,
// its parent, the executable's directory and the home directory. Variable
// so tests can pin the search path.
var dotenvDirs = func() []string {
	dirs := []string{"."}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Dir(wd))
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

// FromEnv reads settings from the process environment without touching
// .env files.
func FromEnv() (*Env, error) {
	env := &Env{
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		Provider:            os.Getenv("LLM_PROVIDER"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      os.Getenv("ANTHROPIC_MODEL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         os.Getenv("OPENAI_MODEL"),
		SerpAPIKey:          os.Getenv("SERPAPI_API_KEY"),
		CalendarCredentials: os.Getenv("GOOGLE_CALENDAR_CREDENTIALS"),
		CalendarToken:       os.Getenv("GOOGLE_CALENDAR_TOKEN"),
		DBPath:              os.Getenv("DB_PATH"),
		HistoryMaxTurns:     DefaultHistoryMaxTurns,
	}
	env.TestMode, _ = strconv.ParseBool(os.Getenv("TEST_MODE"))

	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_CHAT_ID: %w", err)
		}
		env.AdminChatID = id
	}

	if v := os.Getenv("ALLOWED_CHAT_IDS"); v != "" {
		ids, err := parseChatIDs(v)
		if err != nil {
			return nil, fmt.Errorf("parse ALLOWED_CHAT_IDS: %w", err)
		}
		env.AllowedChatIDs = ids
	}

	if v := os.Getenv("HISTORY_MAX_TURNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse HISTORY_MAX_TURNS: %w", err)
		}
		env.HistoryMaxTurns = n
	}

	return env, nil
}

// RequireTelegram checks that the bot token is set.
func (e *Env) RequireTelegram() error {
	if e.TelegramBotToken == "" {
		return ErrMissingToken
	}
	return nil
}

// APIKeyFor returns the credential for a provider, empty when unset.
func (e *Env) APIKeyFor(provider string) string {
	if provider == llm.ProviderOpenAI {
		return e.OpenAIAPIKey
	}
	return e.AnthropicAPIKey
}

// ModelFor returns the model override for a provider, empty when unset.
func (e *Env) ModelFor(provider string) string {
	if provider == llm.ProviderOpenAI {
		return e.OpenAIModel
	}
	return e.AnthropicModel
}

func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
