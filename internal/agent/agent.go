package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/ai"
	"github.com/sentinel-agent/sentinel/internal/config"
	"github.com/sentinel-agent/sentinel/internal/db"
	"github.com/sentinel-agent/sentinel/internal/digest"
	"github.com/sentinel-agent/sentinel/internal/filter"
	"github.com/sentinel-agent/sentinel/internal/logger"
	"github.com/sentinel-agent/sentinel/internal/mail"
	"github.com/sentinel-agent/sentinel/internal/models"
)

// Agent drives one full pipeline run: fetch unseen mail, extract
// opportunity records, filter and score them, persist everything, and
// optionally send the digest.
type Agent struct {
	cfg     *config.Config
	profile *models.Profile
	store   *db.Store
	llm     *ai.OllamaClient
	engine  *filter.Engine
	gate    *ai.SemanticGate
	sender  *digest.Sender
	log     *zap.Logger
}

// Report summarizes one run for logging, the API, and the console.
type Report struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	EmailsFetched  int           `json:"emails_fetched"`
	EmailsSkipped  int           `json:"emails_skipped"`
	EmailsFiltered int           `json:"emails_filtered"`
	Extracted      int           `json:"extracted"`
	HighPriority   int           `json:"high_priority"`
	Exploratory    int           `json:"exploratory"`
	DigestSent     bool          `json:"digest_sent"`
	Errors         []string      `json:"errors,omitempty"`
}

func New(cfg *config.Config, profile *models.Profile, store *db.Store, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}

	llm := ai.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.EmbedModel, cfg.LLM.GenModel)
	classifier := ai.NewClassifier(llm)

	engine := filter.NewEngine(profile, filter.DefaultConfig(), filter.Deps{
		Classifier: classifier,
		Similarity: filter.NewSimilarity(llm, log),
		Logger:     log,
	})

	a := &Agent{
		cfg:     cfg,
		profile: profile,
		store:   store,
		llm:     llm,
		engine:  engine,
		gate:    ai.NewSemanticGate(llm, cfg.LLM.SemanticThreshold, log),
		log:     log,
	}
	if cfg.SendDigest {
		a.sender = digest.NewSender(cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, log)
	}
	return a
}

// Run executes the whole pipeline once. Per-account and per-email
// failures are collected in the report rather than aborting the run.
func (a *Agent) Run(ctx context.Context) (any, error) {
	report := &Report{StartedAt: time.Now().UTC()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	if err := a.gate.Prepare(ctx, a.profile.InterestsText()); err != nil {
		// Run without the pre-filter rather than fail.
		a.log.Warn("semantic gate unavailable", zap.Error(err))
	}

	var records []*models.OpportunityRecord
	for _, acct := range a.cfg.Accounts {
		acctRecords, err := a.processAccount(ctx, acct, report)
		if err != nil {
			a.log.Error("account scan failed",
				zap.String("account", acct.Name), zap.Error(err))
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s: %v", acct.Name, err))
			continue
		}
		records = append(records, acctRecords...)
	}
	report.Extracted = len(records)

	result := a.engine.Run(ctx, records)
	report.HighPriority = len(result.HighPriority)
	report.Exploratory = len(result.Exploratory)
	for _, step := range result.Steps {
		a.log.Info("pipeline step",
			zap.String("step", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left))
	}

	kept := append(append([]*models.OpportunityRecord{}, result.HighPriority...), result.Exploratory...)
	for _, rec := range kept {
		embedding := a.embedRecord(ctx, rec)
		if err := a.store.SaveRecord(ctx, rec, embedding); err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	if a.sender != nil {
		if err := a.sendDigest(ctx, kept); err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else {
			report.DigestSent = true
		}
	}

	a.log.Info("run complete",
		zap.Int("emails", report.EmailsFetched),
		zap.Int("extracted", report.Extracted),
		zap.Int("high_priority", report.HighPriority),
		zap.Int("exploratory", report.Exploratory),
		zap.Duration("took", report.Duration))
	return report, nil
}

func (a *Agent) processAccount(ctx context.Context, acct config.EmailAccount, report *Report) ([]*models.OpportunityRecord, error) {
	client := mail.NewClient(acct.Addr(), acct.Username, acct.Password, acct.Name, a.log)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	defer client.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.ScanDays)
	messages, err := client.FetchUnseen(ctx, cutoff, a.cfg.MaxEmails)
	if err != nil {
		return nil, err
	}
	report.EmailsFetched += len(messages)

	var records []*models.OpportunityRecord
	for _, msg := range messages {
		processed, err := a.store.IsEmailProcessed(ctx, msg.UID)
		if err != nil {
			return records, err
		}
		if processed {
			report.EmailsSkipped++
			continue
		}

		if !a.gate.Relevant(ctx, msg.Text) {
			report.EmailsFiltered++
			a.log.Debug("semantic gate skipped email",
				zap.String("uid", msg.UID),
				zap.String("subject", logger.TruncateForLog(msg.Subject, 80)))
			if err := a.store.MarkEmailProcessed(ctx, msg.UID, msg.Account, msg.Subject); err != nil {
				report.Errors = append(report.Errors, err.Error())
			}
			continue
		}

		records = append(records, a.extract(ctx, msg)...)
		if err := a.store.MarkEmailProcessed(ctx, msg.UID, msg.Account, msg.Subject); err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
	}
	return records, nil
}

// extract tries the LLM first, falling back to the rule-based extractor
// so an unreachable model still yields a usable record.
func (a *Agent) extract(ctx context.Context, msg *mail.Message) []*models.OpportunityRecord {
	extractor := ai.NewExtractor(a.llm, a.log)
	records, err := extractor.Extract(ctx, msg)
	if err == nil {
		return records
	}

	a.log.Warn("llm extraction failed, using fallback",
		zap.String("uid", msg.UID), zap.Error(err))
	records, err = ai.FallbackExtractor{}.Extract(ctx, msg)
	if err != nil {
		a.log.Error("fallback extraction failed", zap.String("uid", msg.UID), zap.Error(err))
		return nil
	}
	return records
}

func (a *Agent) embedRecord(ctx context.Context, rec *models.OpportunityRecord) []float32 {
	text := rec.Title + " " + rec.Organization + " " + rec.Notes
	vec, err := a.llm.GenerateEmbedding(ctx, text)
	if err != nil {
		a.log.Debug("record embedding failed", zap.String("id", rec.ID), zap.Error(err))
		return nil
	}
	return vec
}

func (a *Agent) sendDigest(ctx context.Context, records []*models.OpportunityRecord) error {
	d := digest.Build(time.Now().UTC(), records)
	if d.Empty() {
		a.log.Info("nothing to digest, skipping send")
		return nil
	}

	body, err := d.RenderHTML()
	if err != nil {
		return err
	}
	if err := a.sender.Send(a.cfg.SMTP.Recipient, d.Subject(), body); err != nil {
		return fmt.Errorf("digest delivery failed: %w", err)
	}
	return a.store.LogDigest(ctx, a.cfg.SMTP.Recipient,
		len(d.HighPriority), len(d.Exploratory))
}
