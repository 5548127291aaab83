package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	S3         S3Config         `yaml:"s3"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// RedditConfig 는 업스트림 수집기 설정이다.
// Source 가 "feed" 이면 Atom 피드를, 그 외에는 JSON 리스팅 API 를 사용한다.
type RedditConfig struct {
	Source       string `yaml:"source"`
	BaseURL      string `yaml:"base_url"`
	OAuthBaseURL string `yaml:"oauth_base_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	UserAgent    string `yaml:"user_agent"`

	// MaxPosts/MaxComments 는 컬렉션별 최대 수집 건수다.
	MaxPosts    int `yaml:"max_posts"`
	MaxComments int `yaml:"max_comments"`
	PageSize    int `yaml:"page_size"`

	// RequestsPerMinute 는 업스트림 호출의 분당 최대 요청 수이다.
	// 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	MaxRetries        int           `yaml:"max_retries"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay"`
	MaxRateLimitWaits int           `yaml:"max_rate_limit_waits"`
	// MaxRateLimitWait 는 Retry-After/X-Ratelimit-Reset 헤더로 요청받은 대기의 상한이다.
	MaxRateLimitWait time.Duration `yaml:"max_rate_limit_wait"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

// GeneratorConfig selects the text generator backing the persona synthesizer.
type GeneratorConfig struct {
	Provider        string        `yaml:"provider"` // gemini | openai | ollama | templated
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxPromptChars  int           `yaml:"max_prompt_chars"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	OllamaURL       string        `yaml:"ollama_url"`
	GeminiAPIKey    string        `yaml:"-"`
	OpenAIAPIKey    string        `yaml:"-"`
}

type GenerationConfig struct {
	// AutoAcknowledge 가 true 이면 완료 후 리셋되지 않은 잠금을 새 요청이 해제한다.
	AutoAcknowledge bool `yaml:"auto_acknowledge"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type KafkaConfig struct {
	BootstrapServers string `yaml:"bootstrap_servers"`
	Topic            string `yaml:"topic"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

var (
	mu         sync.RWMutex
	config     *AppConfig
	configPath string
)

// SetConfigPath 는 InitApp 이 읽을 설정 파일 경로를 지정한다.
// 비어 있으면 작업 디렉터리부터 상위로 config.yaml 을 찾는다.
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configPath = path
	config = nil
}

func InitApp() {
	mu.RLock()
	path := configPath
	mu.RUnlock()

	if path == "" {
		path = filepath.Join(GetBasePath(), CONFIG_FILE)
	}

	c, err := Load(path)
	if err != nil {
		panic(err)
	}

	mu.Lock()
	config = c
	mu.Unlock()

	InitLogger(c.Logging.Level)
}

// Load 는 주어진 경로의 설정 파일과 같은 디렉터리의 .env 를 읽어 AppConfig 를 구성한다.
// 설정 파일이 없으면 기본값과 환경변수만으로 구성한다.
func Load(path string) (*AppConfig, error) {
	// load environment variables
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 설정 파일 없이 기본값으로 동작
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(&c)
	applyDefaults(&c)
	return &c, nil
}

func GetConfig() AppConfig {
	mu.RLock()
	c := config
	mu.RUnlock()
	if c == nil {
		InitApp()
		mu.RLock()
		c = config
		mu.RUnlock()
	}

	return *c
}

func applyEnv(c *AppConfig) {
	setFromEnv(&c.Reddit.ClientID, "REDDIT_CLIENT_ID")
	setFromEnv(&c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	setFromEnv(&c.Reddit.UserAgent, "REDDIT_USER_AGENT")
	setFromEnv(&c.Generator.GeminiAPIKey, "GEMINI_API_KEY")
	setFromEnv(&c.Generator.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.Mongo.URI, "MONGO_URI")
	setFromEnv(&c.Kafka.BootstrapServers, "KAFKA_BOOTSTRAP_SERVERS")
	setFromEnv(&c.Output.Dir, "OUTPUT_DIR")
	setFromEnv(&c.Logging.Level, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	r := &c.Reddit
	if r.Source == "" {
		r.Source = "json"
	}
	if r.BaseURL == "" {
		r.BaseURL = "https://www.reddit.com"
	}
	if r.OAuthBaseURL == "" {
		r.OAuthBaseURL = "https://oauth.reddit.com"
	}
	if r.TokenURL == "" {
		r.TokenURL = "https://www.reddit.com/api/v1/access_token"
	}
	if r.UserAgent == "" {
		r.UserAgent = "reddit-persona/1.0"
	}
	if r.MaxPosts <= 0 {
		r.MaxPosts = 100
	}
	if r.MaxComments <= 0 {
		r.MaxComments = 200
	}
	if r.PageSize <= 0 || r.PageSize > 100 {
		r.PageSize = 100
	}
	if r.MaxRetries <= 0 {
		r.MaxRetries = 3
	}
	if r.RetryBaseDelay <= 0 {
		r.RetryBaseDelay = time.Second
	}
	if r.MaxRateLimitWaits <= 0 {
		r.MaxRateLimitWaits = 5
	}
	if r.MaxRateLimitWait <= 0 {
		r.MaxRateLimitWait = 5 * time.Minute
	}
	if r.RequestTimeout <= 0 {
		r.RequestTimeout = 30 * time.Second
	}

	g := &c.Generator
	if g.Provider == "" {
		g.Provider = "templated"
	}
	if g.Timeout <= 0 {
		g.Timeout = 5 * time.Minute
	}
	if g.MaxPromptChars <= 0 {
		g.MaxPromptChars = 4000
	}
	if g.MaxOutputTokens <= 0 {
		g.MaxOutputTokens = 1024
	}
	if g.OllamaURL == "" {
		g.OllamaURL = "http://localhost:11434"
	}
	if g.Model == "" {
		switch g.Provider {
		case "gemini":
			g.Model = "gemini-2.5-flash"
		case "openai":
			g.Model = "gpt-4o-mini"
		case "ollama":
			g.Model = "llama3.2"
		}
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "reddit_persona"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "persona.generation"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
