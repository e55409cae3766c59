package main

import (
	"context"
	"fmt"

	"github.com/imkonsowa/nearme-nli/config"
	"github.com/imkonsowa/nearme-nli/logger"
	"github.com/imkonsowa/nearme-nli/models"
	"github.com/imkonsowa/nearme-nli/tables"
	"github.com/imkonsowa/nearme-nli/translator"
	"github.com/imkonsowa/nearme-nli/validation"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	table *tables.Table
	mode  models.OutputMode
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)

	table, err := tables.Select(cfg.Harness.Table, cfg.Harness.TablePath)
	if err != nil {
		return nil, err
	}

	mode, err := cfg.OutputMode()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		table: table,
		mode:  mode,
	}, nil
}

func applyFlags(cfg *config.Config) {
	if fixturesFlag != "" {
		cfg.Harness.Fixtures = fixturesFlag
	}
	if translatorFlag != "" {
		cfg.Harness.Translator = translatorFlag
	}
	if modeFlag != "" {
		cfg.Harness.OutputMode = modeFlag
	}
	if tableFlag != "" {
		cfg.Harness.Table = tableFlag
	}
	if tablePathFlag != "" {
		cfg.Harness.TablePath = tablePathFlag
	}
}

func (a *app) prompt() (*translator.Prompt, error) {
	return translator.NewPrompt(a.table, a.mode)
}

// translator builds the configured translator. Errors are setup failures.
func (a *app) translator(ctx context.Context) (translator.Translator, error) {
	if a.cfg.Harness.Translator == config.TranslatorRules {
		return translator.NewRules(a.table, a.mode), nil
	}

	prompt, err := a.prompt()
	if err != nil {
		return nil, err
	}

	model, err := translator.NewModel(ctx, a.cfg)
	if err != nil {
		return nil, err
	}

	a.log.Info("configured model", map[string]interface{}{
		"provider": a.cfg.LLM.Provider,
		"model":    a.cfg.LLM.Model,
	})

	return translator.NewLLM(model, prompt, translator.LLMOptions{
		ModelName:   a.cfg.LLM.Model,
		Temperature: a.cfg.LLM.Temperature,
		Timeout:     a.cfg.LLM.Timeout,
	}, a.log), nil
}

func (a *app) validator() (*validation.Validator, error) {
	return validation.NewValidator(a.mode, a.table)
}

// describe renders a translation result the way the harness reports it.
func describe(res translator.Result) string {
	switch res := res.(type) {
	case translator.Completed:
		return res.Text
	case translator.Blocked:
		return "PROMPT BLOCKED: " + res.Reason
	case translator.Empty:
		return "NO CANDIDATES"
	}

	return fmt.Sprintf("unexpected result %T", res)
}
