package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TicketDBPath   string `yaml:"ticket_db_path"`
	KBDir          string `yaml:"kb_dir"`
	ResultsDBPath  string `yaml:"results_db_path"`
	ResultsCSVPath string `yaml:"results_csv_path"`

	EmbeddingURL    string `yaml:"embedding_url"`
	EmbeddingAPIKey string `yaml:"embedding_api_key"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDim    int    `yaml:"embedding_dim"`

	VectorDBURL    string `yaml:"vector_db_url"`
	VectorDBAPIKey string `yaml:"vector_db_api_key"`

	AnthropicAPIKey   string  `yaml:"anthropic_api_key"`
	LLMModel          string  `yaml:"llm_model"`
	LLMMaxTokens      int     `yaml:"llm_max_tokens"`
	LLMTemperature    float64 `yaml:"llm_temperature"`
	LLMTopP           float64 `yaml:"llm_top_p"`
	LLMTopK           int     `yaml:"llm_top_k"`
	LLMRetries        int     `yaml:"llm_retries"`
	LLMBackoffSeconds int     `yaml:"llm_backoff_base_seconds"`

	RetrievalTopK int `yaml:"retrieval_top_k"`
	MaxFieldLen   int `yaml:"max_field_len"`

	SkipCategories  []string          `yaml:"skip_categories"`
	CategoryAliases map[string]string `yaml:"category_aliases"`
	StatusAliases   map[string]string `yaml:"status_aliases"`
	TemplatesPath   string            `yaml:"templates_path"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`
}

// Skip and alias tables are configured with the raw spreadsheet labels; the
// orchestrator canonicalizes them before matching.
func defaultSkipCategories() []string {
	return []string{
		"post_loan_disbursal_query_payment_lndn_payment_",
		"predisbursal_loan_query_rf/vf_query_general_information",
		"escalations_rbi-cyber_cell_",
		"escalations_singledebt_",
		"post_loan_disbursal_query_payment_paytm_payment_not_updated",
		"other_kyc_issues",
		"predisbursal_loan_query_im+_instances_unable_to_place_withdrawal",
	}
}

func defaultCategoryAliases() map[string]string {
	return map[string]string{
		"predisbursal_loan_query_im+_instances":       "predisbursal_loan_query_im_in_1",
		"update_-_edit_details_bank_account_details_": "update_edit_details_bank_accou",
	}
}

func defaultStatusAliases() map[string]string {
	return map[string]string{
		"im_closed": "imclosed",
	}
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.TicketDBPath, "TICKET_DB_PATH")
	envOverride(&cfg.KBDir, "KB_DIR")
	envOverride(&cfg.ResultsDBPath, "RESULTS_DB_PATH")
	envOverride(&cfg.ResultsCSVPath, "RESULTS_CSV_PATH")
	envOverride(&cfg.EmbeddingURL, "EMBEDDING_URL")
	envOverride(&cfg.EmbeddingAPIKey, "EMBEDDING_API_KEY")
	envOverride(&cfg.EmbeddingModel, "EMBEDDING_MODEL")
	envOverrideInt(&cfg.EmbeddingDim, "EMBEDDING_DIM")
	envOverride(&cfg.VectorDBURL, "VECTOR_DB_URL")
	envOverride(&cfg.VectorDBAPIKey, "VECTOR_DB_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE")
	envOverrideFloat(&cfg.LLMTopP, "LLM_TOP_P")
	envOverrideInt(&cfg.LLMTopK, "LLM_TOP_K")
	envOverrideInt(&cfg.LLMRetries, "LLM_RETRIES")
	envOverrideInt(&cfg.LLMBackoffSeconds, "LLM_BACKOFF_BASE_SECONDS")
	envOverrideInt(&cfg.RetrievalTopK, "RETRIEVAL_TOP_K")
	envOverrideInt(&cfg.MaxFieldLen, "MAX_FIELD_LEN")
	envOverride(&cfg.TemplatesPath, "TEMPLATES_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	if names := os.Getenv("SKIP_CATEGORIES"); names != "" {
		cfg.SkipCategories = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.SkipCategories = append(cfg.SkipCategories, name)
			}
		}
	}

	// Defaults
	if cfg.TicketDBPath == "" {
		cfg.TicketDBPath = "data/datadb.csv"
	}
	if cfg.KBDir == "" {
		cfg.KBDir = "data/kb_sheets"
	}
	if cfg.ResultsDBPath == "" {
		cfg.ResultsDBPath = "./ticketbot.db"
	}
	if cfg.ResultsCSVPath == "" {
		cfg.ResultsCSVPath = "./results.csv"
	}
	if cfg.EmbeddingURL == "" {
		cfg.EmbeddingURL = "http://localhost:11434/v1"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "all-minilm"
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = 384
	}
	if cfg.VectorDBURL == "" {
		cfg.VectorDBURL = "http://localhost:6333"
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 2000
	}
	if cfg.LLMTemperature == 0 {
		cfg.LLMTemperature = 0.4
	}
	if cfg.LLMTopP == 0 {
		cfg.LLMTopP = 0.8
	}
	if cfg.LLMTopK == 0 {
		cfg.LLMTopK = 10
	}
	if cfg.LLMRetries == 0 {
		cfg.LLMRetries = 5
	}
	if cfg.LLMBackoffSeconds == 0 {
		cfg.LLMBackoffSeconds = 5
	}
	if cfg.RetrievalTopK == 0 {
		cfg.RetrievalTopK = 1
	}
	if cfg.MaxFieldLen == 0 {
		cfg.MaxFieldLen = 65535
	}
	if cfg.SkipCategories == nil {
		cfg.SkipCategories = defaultSkipCategories()
	}
	if cfg.CategoryAliases == nil {
		cfg.CategoryAliases = defaultCategoryAliases()
	}
	if cfg.StatusAliases == nil {
		cfg.StatusAliases = defaultStatusAliases()
	}

	// Validate bounds
	if cfg.EmbeddingDim < 1 {
		log.Fatalf("invalid embedding_dim '%d': must be >= 1", cfg.EmbeddingDim)
	}
	if cfg.RetrievalTopK < 1 {
		log.Fatalf("invalid retrieval_top_k '%d': must be >= 1", cfg.RetrievalTopK)
	}
	if cfg.MaxFieldLen < 1 {
		log.Fatalf("invalid max_field_len '%d': must be >= 1", cfg.MaxFieldLen)
	}
	if cfg.LLMRetries < 1 {
		log.Fatalf("invalid llm_retries '%d': must be >= 1", cfg.LLMRetries)
	}
	if cfg.LLMBackoffSeconds < 1 {
		log.Fatalf("invalid llm_backoff_base_seconds '%d': must be >= 1", cfg.LLMBackoffSeconds)
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for %s: %v", envKey, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("Invalid value for %s: %v", envKey, err)
		}
		*field = parsed
	}
}
