package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/intake"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
)

// rulesFile is the exchange format of mapping rules.
type rulesFile struct {
	Version int                  `yaml:"version"`
	Rules   []safety.MappingRule `yaml:"rules"`
}

const rulesFileVersion = 1

// ExportRules renders the stored mapping rules as YAML.
func (s *Service) ExportRules(ctx context.Context) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkStore(); err != nil {
		return nil, err
	}

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "load state")
	}
	rules := state.MappingRules
	if rules == nil {
		rules = []safety.MappingRule{}
	}

	out, err := yaml.Marshal(rulesFile{Version: rulesFileVersion, Rules: rules})
	return out, errs.Wrap(err, "encode rules")
}

// ImportRules merges a YAML rules file into the stored rules. Rules without a
// source are treated as curated by hand.
func (s *Service) ImportRules(ctx context.Context, data []byte) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, errs.User(err, "the rules file is not valid YAML")
	}
	if file.Version != 0 && file.Version != rulesFileVersion {
		return 0, errs.User(fmt.Errorf("rules file version %d", file.Version), "unsupported rules file version")
	}
	for i := range file.Rules {
		if file.Rules[i].Source == "" {
			file.Rules[i].Source = safety.RuleManual
		}
	}
	incoming := intake.NormalizeRules(file.Rules)

	err := s.update(ctx, func(state *safety.State) error {
		state.MappingRules = intake.MergeRules(state.MappingRules, incoming)
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "import rules")
	}

	logging.Info(logging.WithComponent(ctx, "usecase.ingest"), "mapping rules imported", slog.Int("rules", len(incoming)))
	return len(incoming), nil
}
