// Command tambay runs the barkada Slack slash-command bot: meal
// RSVPs with a daily SMS headcount report, the utang ledger, and the
// monito-monita draw.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nlopes/slack"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tambayteam/tambay/bot"
	"github.com/tambayteam/tambay/directory"
	"github.com/tambayteam/tambay/mealday"
	"github.com/tambayteam/tambay/sms"
	"github.com/tambayteam/tambay/store"
)

type config struct {
	Addr      string `env:"TAMBAY_ADDR" envDefault:":5000"`
	RedisAddr string `env:"TAMBAY_REDIS_ADDR" envDefault:"localhost:6379"`
	Timezone  string `env:"TAMBAY_TZ" envDefault:"Asia/Manila"`

	SlackToken  string `env:"TAMBAY_SLACK_TOKEN,required"`
	MealsToken  string `env:"TAMBAY_MEALS_TOKEN,required"`
	UtangToken  string `env:"TAMBAY_UTANG_TOKEN,required"`
	MonitoToken string `env:"TAMBAY_MONITO_TOKEN,required"`

	ReportCron       string   `env:"TAMBAY_REPORT_CRON" envDefault:"0 18 * * *"`
	ReportSkip       []string `env:"TAMBAY_REPORT_SKIP" envDefault:"Saturday,Sunday"`
	ReportRecipients []string `env:"TAMBAY_REPORT_RECIPIENTS"`
	AlwaysCount      []string `env:"TAMBAY_ALWAYS_COUNT"`

	MonitoChannel string `env:"TAMBAY_MONITO_CHANNEL" envDefault:"monito-monita"`

	SMSURL    string `env:"TAMBAY_SMS_URL" envDefault:"https://api.semaphore.co/api/v4/messages"`
	SMSKey    string `env:"TAMBAY_SMS_KEY"`
	SMSSender string `env:"TAMBAY_SMS_SENDER"`

	DevMode bool `env:"TAMBAY_DEV_MODE"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing configuration", "error", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalw("loading timezone", "tz", cfg.Timezone, "error", err)
	}

	var skipDays mealday.SkipDays
	for _, name := range cfg.ReportSkip {
		day, err := mealday.ParseWeekday(name)
		if err != nil {
			log.Fatalw("parsing report skip day", "day", name, "error", err)
		}
		skipDays = append(skipDays, day)
	}

	var st store.Store
	if cfg.DevMode {
		st = store.NewMemory()
		log.Infow("dev mode, using in-memory store")
	} else {
		st = store.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	dir := directory.NewSlack(slack.New(cfg.SlackToken))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dir.Refresh(ctx); err != nil {
		log.Fatalw("loading slack directory", "error", err)
	}
	cancel()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	gateway := sms.New(httpClient, cfg.SMSURL, cfg.SMSKey, cfg.SMSSender)

	b := bot.New(bot.Config{
		Store:     st,
		Directory: dir,
		Messenger: gateway,
		Log:       log,
		Secrets: map[string]string{
			bot.CommandMeals:  cfg.MealsToken,
			bot.CommandUtang:  cfg.UtangToken,
			bot.CommandMonito: cfg.MonitoToken,
		},
		Location:      loc,
		SkipDays:      skipDays,
		AlwaysCount:   cfg.AlwaysCount,
		Recipients:    cfg.ReportRecipients,
		MonitoChannel: cfg.MonitoChannel,
		DevMode:       cfg.DevMode,
	})

	sched := cron.New(cron.WithLocation(loc))
	if _, err := sched.AddFunc(cfg.ReportCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := b.Report(ctx); err != nil {
			log.Errorw("running scheduled report", "error", err)
		}
	}); err != nil {
		log.Fatalw("scheduling report", "cron", cfg.ReportCron, "error", err)
	}
	if _, err := sched.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := dir.Refresh(ctx); err != nil {
			log.Warnw("refreshing slack directory", "error", err)
		}
	}); err != nil {
		log.Fatalw("scheduling directory refresh", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      b.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infow("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("shutting down http server", "error", err)
	}
}
