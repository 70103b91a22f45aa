package policyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/rentix/backend/pkg/config"
)

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes and validates a policy document
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds the policy for a process: the YAML file when
// ENGINE_POLICY_FILE is set, otherwise the built-in catalogue with the
// deadline defaults and worker count taken from the environment.
func FromEnv(cfg *config.Config) (*Config, error) {
	if cfg.Engine.PolicyFile != "" {
		p, _, err := Load(cfg.Engine.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load policy %s: %w", cfg.Engine.PolicyFile, err)
		}
		return p, nil
	}

	p := Default()
	p.Deadlines = Deadlines{
		DefaultNoticeDays:       cfg.Engine.DefaultNoticeDays,
		DefaultOptionNoticeDays: cfg.Engine.DefaultOptionNoticeDays,
		SafetyBufferDays:        cfg.Engine.SafetyBufferDays,
		AlertLeadDays:           cfg.Engine.AlertLeadDays,
	}
	if cfg.Engine.RecomputeWorkers > 0 {
		p.Recompute.Workers = cfg.Engine.RecomputeWorkers
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Marshal renders cfg as YAML (policy show / template output)
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
