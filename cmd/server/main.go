// cmd/server/main.go
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spellrush/spellrush/internal/config"
	"github.com/spellrush/spellrush/internal/handlers"
	"github.com/spellrush/spellrush/internal/history"
	"github.com/spellrush/spellrush/internal/lobby"
	"github.com/spellrush/spellrush/internal/middleware"
	"github.com/spellrush/spellrush/internal/words"
)

const releaseVersion = "0.3.1"

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SPELLRUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "spellrush",
		Short:         "Multiplayer spelling race server: code-joined lobbies, timed word rounds over WebSocket.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "address to bind to (env: SPELLRUSH_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on (env: SPELLRUSH_PORT)")
	fs.DurationVar(&cfg.SettleDelay, "settle-delay", cfg.SettleDelay, "pause between rounds while the word is shown (env: SPELLRUSH_SETTLE_DELAY)")
	fs.StringVar(&cfg.AvatarUpstream, "avatar-upstream", cfg.AvatarUpstream, "base URL of the avatar generator (env: SPELLRUSH_AVATAR_UPSTREAM)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for the game history queue, empty disables it (env: SPELLRUSH_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "redis database index (env: SPELLRUSH_REDIS_DB)")
	fs.StringVar(&cfg.WordsFile, "words-file", cfg.WordsFile, "JSON word->definition file replacing the built-in tables (env: SPELLRUSH_WORDS_FILE)")
	fs.Int64Var(&cfg.WordSeed, "word-seed", cfg.WordSeed, "seed for random word selection (env: SPELLRUSH_WORD_SEED)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging (env: SPELLRUSH_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("spellrush v{{.Version}}\n")

	return cmd
}

func run(cfg *config.Config) error {
	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	master := words.Builtin()
	if cfg.WordsFile != "" {
		loaded, err := words.LoadFile(cfg.WordsFile)
		if err != nil {
			return err
		}
		master = loaded
		logger.Infof("Loaded %d words from %s", len(master), cfg.WordsFile)
	}
	source := words.New(master, cfg.WordSeed)

	registry := lobby.NewRegistry(logger)
	srv := handlers.NewServer(registry, source, logger)
	srv.SettleDelay = cfg.SettleDelay

	if cfg.RedisAddr != "" {
		pub, err := history.NewPublisher(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer pub.Close()
		srv.History = pub
		logger.Infof("Publishing game summaries to redis at %s", cfg.RedisAddr)
	}

	avatars := handlers.NewAvatarProxy(cfg.AvatarUpstream, logger)

	router := httprouter.New()
	router.Handler(http.MethodGet, "/ws", handlers.WSHandler(logger, srv))
	router.GET("/avatar/:style/:seed", avatars.Handle)
	router.GET("/qr/:code", handlers.QRHandler(logger))
	router.GET("/healthz", handlers.HealthHandler)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.LogMiddleware(logger)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("Running on %s", cfg.ListenAddr())
	return httpServer.ListenAndServe()
}

func main() {
	cfg := config.Defaults()
	if err := newCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
