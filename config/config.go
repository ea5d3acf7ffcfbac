package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	LogPath        = "./logs/"
	ServerLog      = "server"
	ReputationLog  = "reputation"
	StakeLog       = "stake"
	RemediationLog = "remediation"
	NetworkLog     = "network"
	StoreLog       = "store"
)

const (
	SandwicherList    = "Sandwicher List"
	SlowBlockProducer = "Slow Block Producers"
	HighCommission    = "High Commission"
)

const (
	DefaultHighCommission = 5.0
	DefaultSampleSize     = 30
)

type Node struct {
	Rpc    string `json:"rpc" yaml:"rpc"`
	Usable bool   `json:"usable" yaml:"usable"`
}

type Policy struct {
	Pubkey string `json:"pubkey" yaml:"pubkey"`
	Name   string `json:"name" yaml:"name"`
}

type Config struct {
	Nodes            []*Node          `json:"nodes" yaml:"nodes"`
	DetectNodes      bool             `json:"detect_nodes" yaml:"detect_nodes"`
	Listen           string           `json:"listen" yaml:"listen"`
	AllowedOrigins   []string         `json:"allowed_origins" yaml:"allowed_origins"`
	StakeWizUrl      string           `json:"stakewiz_url" yaml:"stakewiz_url"`
	PolicyUrl        string           `json:"policy_url" yaml:"policy_url"`
	PolicyToken      string           `json:"policy_token" yaml:"policy_token"`
	Policies         []*Policy        `json:"policies" yaml:"policies"`
	HighCommission   float64          `json:"high_commission" yaml:"high_commission"`
	SampleSize       int              `json:"sample_size" yaml:"sample_size"`
	FeedTimeout      int              `json:"feed_timeout_seconds" yaml:"feed_timeout_seconds"`
	StakePool        solana.PublicKey `json:"stake_pool" yaml:"-"`
	MemoValidator    solana.PublicKey `json:"memo_validator" yaml:"-"`
	StakePoolApi     string           `json:"stake_pool_api" yaml:"stake_pool_api"`
	PoolListUrl      string           `json:"pool_list_url" yaml:"pool_list_url"`
	PoolName         string           `json:"pool_name" yaml:"pool_name"`
	PoolUpdateDelay  int              `json:"pool_update_delay_ms" yaml:"pool_update_delay_ms"`
	ShoutrrrUrls     []string         `json:"shoutrrr_urls" yaml:"shoutrrr_urls"`
	DingUrl          string           `json:"ding_url" yaml:"ding_url"`
	DBUrl            string           `json:"db_url" yaml:"db_url"`
	DBScheme         string           `json:"db_scheme" yaml:"db_scheme"`
	DBUser           string           `json:"db_user" yaml:"db_user"`
	DBPasswd         string           `json:"db_passwd" yaml:"db_passwd"`
	LogPath          string           `json:"log_path" yaml:"log_path"`
	StakePoolKey     string           `json:"-" yaml:"stake_pool"`
	MemoValidatorKey string           `json:"-" yaml:"memo_validator"`
}

func Default() *Config {
	return &Config{
		Nodes: []*Node{
			{Rpc: "https://api.mainnet-beta.solana.com", Usable: true},
		},
		Listen:         "0.0.0.0:8089",
		AllowedOrigins: []string{"*"},
		StakeWizUrl:    "https://api.stakewiz.com/validators",
		PolicyUrl:      "https://www.validators.app/api/v1/policies/mainnet",
		Policies: []*Policy{
			{Pubkey: "7xTAiL3tTzgbDwsxMKi2rMXW7QKzcGrABsZc2tW6L6bj", Name: SlowBlockProducer},
			{Pubkey: "xMTozeQTEX2MR9KUon8vjg17U5Q9459RSASE3wy5eNB", Name: SandwicherList},
		},
		HighCommission:  DefaultHighCommission,
		SampleSize:      DefaultSampleSize,
		FeedTimeout:     15,
		StakePool:       solana.MustPublicKeyFromBase58("stk9ApL5HeVAwPLr3TLhDXdZS8ptVu7zp6ov8HFDuMi"),
		MemoValidator:   solana.MustPublicKeyFromBase58("7K8DVxtNJGnMtUY1CQJT5jcs8sFGSZTDiG7kowvFpECh"),
		StakePoolApi:    "https://stake.solblaze.org/api/v1",
		PoolListUrl:     "https://api.solanahub.app/api/stake/get-stake-pools",
		PoolName:        "solblaze",
		PoolUpdateDelay: 2000,
		LogPath:         LogPath,
	}
}

// Load reads the config file (json or yaml by extension) on top of Default and
// applies .env and environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := cfg.resolveYamlKeys(); err != nil {
				return nil, err
			}
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	// a missing .env is fine
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.Nodes = UsableNodes(cfg.Nodes)
	if len(cfg.Nodes) == 0 {
		return nil, fmt.Errorf("there is no usable node")
	}
	// 0 is a valid threshold: any commission flags the validator
	if cfg.HighCommission < 0 {
		return nil, fmt.Errorf("high_commission must not be negative: %v", cfg.HighCommission)
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.LogPath != "" {
		LogPath = cfg.LogPath
	}
	return cfg, nil
}

func (cfg *Config) resolveYamlKeys() error {
	if cfg.StakePoolKey != "" {
		key, err := solana.PublicKeyFromBase58(cfg.StakePoolKey)
		if err != nil {
			return fmt.Errorf("stake_pool: %w", err)
		}
		cfg.StakePool = key
	}
	if cfg.MemoValidatorKey != "" {
		key, err := solana.PublicKeyFromBase58(cfg.MemoValidatorKey)
		if err != nil {
			return fmt.Errorf("memo_validator: %w", err)
		}
		cfg.MemoValidator = key
	}
	return nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("VALIDATORS_APP_API_KEY"); v != "" {
		cfg.PolicyToken = v
	}
	if v := os.Getenv("DETOX_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DETOX_RPC"); v != "" {
		cfg.Nodes = []*Node{{Rpc: v, Usable: true}}
	}
}

func UsableNodes(nodes []*Node) []*Node {
	usable := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if node != nil && node.Usable {
			usable = append(usable, node)
		}
	}
	return usable
}
