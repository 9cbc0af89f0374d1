package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// 支持的大模型后端。
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// 会话存储类型。
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Chat    ChatConfig
	Session SessionConfig
	Triage  TriageConfig
}

// Load 从环境变量加载配置。所选后端缺少凭证时直接返回错误。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}
	if err := ai.Validate(); err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	triage, err := loadTriageConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Chat: chat, Session: session, Triage: triage}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string
	Gemini   GeminiConfig
	Ark      ArkConfig
	OpenAI   OpenAIConfig
	Local    OpenAIConfig

	Temperature  *float64
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	ChatMaxTokens      int
	ClassifyMaxTokens  int
	RecommendMaxTokens int
}

// GeminiConfig 描述 Gemini API 配置。
type GeminiConfig struct {
	APIKey string
	Model  string
}

// ArkConfig 描述火山方舟配置。
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// OpenAIConfig 描述 OpenAI 兼容接口配置，本地模型服务（如 Ollama）同样使用该结构。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Validate 检查所选后端的必需凭证。
func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=%s", c.Provider)
		}
	case ProviderArk:
		if c.Ark.Model == "" {
			return fmt.Errorf("ARK_MODEL is required when AI_PROVIDER=%s", c.Provider)
		}
		if c.Ark.APIKey == "" && (c.Ark.AccessKey == "" || c.Ark.SecretKey == "") {
			return fmt.Errorf("ARK_API_KEY or ARK_ACCESS_KEY + ARK_SECRET_KEY is required when AI_PROVIDER=%s", c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=%s", c.Provider)
		}
	case ProviderLocal:
		if c.Local.BaseURL == "" || c.Local.Model == "" {
			return fmt.Errorf("LOCAL_BASE_URL and LOCAL_MODEL are required when AI_PROVIDER=%s", c.Provider)
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER value %q", c.Provider)
	}
	return nil
}

// ModelName 返回所选后端的模型名。
func (c AIConfig) ModelName() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderArk:
		return c.Ark.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderLocal:
		return c.Local.Model
	default:
		return ""
	}
}

// Temperature32 返回 float32 形式的温度，未配置时为 nil。
func (c AIConfig) Temperature32() *float32 {
	if c.Temperature == nil {
		return nil
	}
	val := float32(*c.Temperature)
	return &val
}

// NewChatModel 使用配置创建 eino 模型实例，适用于 ark、openai 与 local 后端。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	temperature := c.Temperature32()

	switch c.Provider {
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.Ark.BaseURL,
			Region:      c.Ark.Region,
			APIKey:      c.Ark.APIKey,
			AccessKey:   c.Ark.AccessKey,
			SecretKey:   c.Ark.SecretKey,
			Model:       c.Ark.Model,
			Temperature: temperature,
		})
	case ProviderOpenAI, ProviderLocal:
		target := c.OpenAI
		if c.Provider == ProviderLocal {
			target = c.Local
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      target.APIKey,
			BaseURL:     target.BaseURL,
			Model:       target.Model,
			Timeout:     c.Timeout,
			Temperature: temperature,
		})
	default:
		return nil, fmt.Errorf("provider %s has no eino chat model", c.Provider)
	}
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	backoff, err := parseDurationEnv("AI_RETRY_BACKOFF", 500*time.Millisecond)
	if err != nil {
		return AIConfig{}, err
	}

	retries, err := parseIntEnv("AI_MAX_RETRIES", 2)
	if err != nil {
		return AIConfig{}, err
	}
	if retries < 0 {
		retries = 0
	}

	chatTokens, err := parseIntEnv("AI_CHAT_MAX_TOKENS", 512)
	if err != nil {
		return AIConfig{}, err
	}

	classifyTokens, err := parseIntEnv("AI_CLASSIFY_MAX_TOKENS", 16)
	if err != nil {
		return AIConfig{}, err
	}

	recommendTokens, err := parseIntEnv("AI_RECOMMEND_MAX_TOKENS", 256)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider: strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini)),
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Local: OpenAIConfig{
			APIKey:  getEnvOrDefault("LOCAL_API_KEY", "ollama"),
			BaseURL: getEnvOrDefault("LOCAL_BASE_URL", "http://localhost:11434/v1"),
			Model:   getEnvOrDefault("LOCAL_MODEL", "llama3.1"),
		},
		Temperature:        temperature,
		Timeout:            timeout,
		MaxRetries:         retries,
		RetryBackoff:       backoff,
		ChatMaxTokens:      chatTokens,
		ClassifyMaxTokens:  classifyTokens,
		RecommendMaxTokens: recommendTokens,
	}, nil
}

// ChatConfig 描述聊天会话策略。
type ChatConfig struct {
	HistoryLimit int
	MaxParts     int
	SessionTTL   time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	limit, err := parseIntEnv("CHAT_HISTORY_LIMIT", 20)
	if err != nil {
		return ChatConfig{}, err
	}
	if limit < 2 {
		limit = 2
	}

	parts, err := parseIntEnv("CHAT_MAX_PARTS", 3)
	if err != nil {
		return ChatConfig{}, err
	}
	if parts < 1 {
		parts = 1
	}

	ttl, err := parseDurationEnv("CHAT_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{HistoryLimit: limit, MaxParts: parts, SessionTTL: ttl}, nil
}

// SessionConfig 描述会话历史的存储位置。
type SessionConfig struct {
	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func loadSessionConfig() (SessionConfig, error) {
	store := strings.ToLower(getEnvOrDefault("SESSION_STORE", StoreMemory))
	if store != StoreMemory && store != StoreRedis {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_STORE value %q", store)
	}

	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return SessionConfig{}, err
	}

	addr := getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	// Remove redis:// prefix if present
	addr = strings.TrimPrefix(addr, "redis://")

	return SessionConfig{
		Store:         store,
		RedisAddr:     addr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
	}, nil
}

// TriageConfig 描述日记风险与情绪分析配置。
type TriageConfig struct {
	ExtraRiskPhrases  []string
	EmotionLLMEnabled bool
}

func loadTriageConfig() (TriageConfig, error) {
	enabled, err := parseBoolEnv("EMOTION_LLM_ENABLED", true)
	if err != nil {
		return TriageConfig{}, err
	}

	return TriageConfig{
		ExtraRiskPhrases:  splitList(os.Getenv("RISK_EXTRA_PHRASES")),
		EmotionLLMEnabled: enabled,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return val, nil
}

// parseDurationEnv 接受 Go duration 字符串（如 "30s"）或纯数字秒数。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return val, nil
}
