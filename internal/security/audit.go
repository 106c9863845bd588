// Package security inspects the deployment at startup and logs what an operator should
// fix. Findings never stop the process.
package security

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/models"
	"github.com/charlesng35/aidemo/internal/sentiment"
)

type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

const minSecretKeyBytes = 32

// Finding is the outcome of one rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
}

type Report struct {
	At       time.Time `json:"at"`
	Findings []Finding `json:"findings"`
}

// Count returns how many findings have severity sev.
func (r Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Log writes every finding that is not ok: warnings at warn level, critical ones at error.
func (r Report) Log(log *zap.Logger) {
	for _, f := range r.Findings {
		fields := []zap.Field{zap.String("rule", f.Rule)}
		if f.Fix != "" {
			fields = append(fields, zap.String("fix", f.Fix))
		}
		switch f.Severity {
		case SeverityCritical:
			log.Error(f.Message, fields...)
		case SeverityWarn:
			log.Warn(f.Message, fields...)
		}
	}
}

// Auditor runs the startup rules against the loaded configuration and database.
type Auditor struct {
	db        *gorm.DB
	cfg       *app.Config
	generated map[string]bool

	// Now stamps the report; tests pin it.
	Now func() time.Time
}

// New builds an Auditor. generated lists the keys app.ApplyRuntimeDefaults filled in.
// A nil db turns the blog rule into a warning.
func New(db *gorm.DB, cfg *app.Config, generated map[string]bool) *Auditor {
	return &Auditor{db: db, cfg: cfg, generated: generated, Now: time.Now}
}

type rule struct {
	id          string
	needsConfig bool
	check       func(a *Auditor, ctx context.Context) Finding
}

var rules = []rule{
	{id: "secret_key", needsConfig: true, check: (*Auditor).secretKey},
	{id: "redis_transport", needsConfig: true, check: (*Auditor).redisTransport},
	{id: "tts_endpoint", needsConfig: true, check: (*Auditor).ttsEndpoint},
	{id: "classifier_token", needsConfig: true, check: (*Auditor).classifierToken},
	{id: "blog_seed", check: (*Auditor).blogSeed},
}

// Run evaluates every rule in order.
func (a *Auditor) Run(ctx context.Context) Report {
	report := Report{At: a.Now().UTC(), Findings: make([]Finding, 0, len(rules))}
	for _, r := range rules {
		var f Finding
		if r.needsConfig && a.cfg == nil {
			f = warn("configuration not loaded", "load configuration before auditing")
		} else {
			f = r.check(a, ctx)
		}
		f.Rule = r.id
		report.Findings = append(report.Findings, f)
	}
	return report
}

func ok(msg string) Finding { return Finding{Severity: SeverityOK, Message: msg} }

func warn(msg, fix string) Finding {
	return Finding{Severity: SeverityWarn, Message: msg, Fix: fix}
}

func critical(msg, fix string) Finding {
	return Finding{Severity: SeverityCritical, Message: msg, Fix: fix}
}

func (a *Auditor) secretKey(context.Context) Finding {
	if a.generated["server.secret_key"] {
		return warn("secret key was generated at startup; CSRF cookies break on every restart",
			"set SECRET_KEY to a stable random value")
	}
	switch n := len(strings.TrimSpace(a.cfg.Server.SecretKey)); {
	case n == 0:
		return critical("secret key is empty", "set SECRET_KEY to a random value of at least 32 bytes")
	case n < minSecretKeyBytes:
		return warn(fmt.Sprintf("secret key is only %d bytes", n),
			"use a random secret of at least 32 bytes")
	default:
		return ok("secret key length is adequate")
	}
}

func (a *Auditor) redisTransport(context.Context) Finding {
	redis := a.cfg.Cache.Redis
	if !redis.Enabled {
		return ok("redis disabled; using the database cache")
	}

	addr := redis.Addr()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return critical(fmt.Sprintf("redis address %q is not host:port", addr),
			"set REDIS_HOST and REDIS_PORT")
	}
	if redis.Password == "" && !privateHost(host) {
		return warn(fmt.Sprintf("redis at %s is reachable beyond the cluster without a password", addr),
			"set cache.redis.password and enable cache.redis.tls")
	}
	return ok("redis transport configured")
}

func (a *Auditor) ttsEndpoint(context.Context) Finding {
	raw := strings.TrimSpace(a.cfg.TTS.URL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return critical(fmt.Sprintf("TTS URL %q is not an absolute http(s) URL", raw),
			"set SPEECHIFY_TTS_URL to the speech service endpoint")
	}
	if u.Scheme == "http" && !privateHost(u.Hostname()) {
		return warn(fmt.Sprintf("TTS requests to %s are sent unencrypted", u.Host),
			"use https for speech services outside the cluster")
	}
	return ok("TTS endpoint is " + u.Redacted())
}

func (a *Auditor) classifierToken(context.Context) Finding {
	if !strings.EqualFold(strings.TrimSpace(a.cfg.Sentiment.Provider), sentiment.ProviderHuggingFace) {
		return ok("classifier needs no credentials")
	}
	if strings.TrimSpace(a.cfg.Sentiment.HuggingFace.Token) == "" {
		return warn("Hugging Face provider has no API token; anonymous calls are heavily rate limited",
			"set AIDEMO_SENTIMENT_HUGGINGFACE_TOKEN")
	}
	return ok("Hugging Face token configured")
}

func (a *Auditor) blogSeed(ctx context.Context) Finding {
	if a.db == nil {
		return warn("database unavailable; blog content not checked", "check database connectivity")
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.BlogPost{}).Count(&count).Error; err != nil {
		return warn("count blog posts: "+err.Error(), "resolve the database error and restart")
	}
	if count == 0 {
		return critical("blog table is empty", "restart the portfolio to re-run seeding")
	}
	return ok(fmt.Sprintf("%d blog posts present", count))
}

// privateHost treats loopback, RFC 1918 addresses and single-label names such as
// cluster service names as private.
func privateHost(host string) bool {
	if host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return host == "localhost" || !strings.Contains(host, ".")
}
