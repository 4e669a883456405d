/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lakshyashishir/appinventor-sources/pkg/clog"
	"github.com/lakshyashishir/appinventor-sources/pkg/config"
	"github.com/lakshyashishir/appinventor-sources/pkg/crashreport"
	"github.com/lakshyashishir/appinventor-sources/pkg/importer"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/stor"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/webapi/apimiddleware"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	port    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "odeuploadd",
	Short: "Run the ODE upload server",
	Long: `Accepts multipart uploads of projects, project files, user files,
component archives and global assets, and stores them under ODE_STORAGE_DIR.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := loadConfig()

		if err := clog.SetGlobalLevelFromString(c.GetKeyWithDefault("ODE_LOG_LEVEL", "info")); err != nil {
			log.Warnf("Ignoring ODE_LOG_LEVEL: %s", err)
		}

		storageDir := mustGetStorageDir(c)
		log.Infof("Storage Dir: %s", storageDir)

		dialector, err := odedb.Dialector(c, storageDir)
		if err != nil {
			log.Fatalf("Unable to configure database: %s", err)
		}

		db := odedb.MustConnectToDB(dialector)
		stors := stor.NewGormStors(db)

		fileImporter := importer.NewFileImporter(stors, storageDir, importer.LimitsFromConfig(c))
		reporter := crashreport.Reporters{
			crashreport.NewLogReporter(clog.UsingCtx(clog.HTTPCtx)),
			crashreport.NewSentryReporter(nil),
		}

		spoolDir := filepath.Join(storageDir, "spool")
		if err := os.MkdirAll(spoolDir, 0755); err != nil {
			log.Fatalf("Unable to create spool dir %s: %s", spoolDir, err)
		}

		router := upload.NewRouter(fileImporter, reporter, upload.WithExtractor(upload.NewExtractor(spoolDir)))

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())
		e.Use(middleware.RequestID())
		e.Use(middleware.BodyLimit(c.GetKeyWithDefault("ODE_MAX_BODY_SIZE", "64M")))

		setupRoutes(e, RouteOpts{
			router:      router,
			apikeyCache: apimiddleware.NewAPIKeyCache(stors.UserStor),
			keyname:     c.GetKeyWithDefault("ODE_APIKEY_NAME", "apikey"),
		})

		if port == "" {
			port = c.GetKeyWithDefault("ODE_PORT", "1360")
		}

		log.Infof("Listening on port %s", port)
		if err := e.Start(":" + port); err != nil {
			log.Fatalf("Unable to start server: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env or ODE_DOTENV_PATH)")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default is ODE_PORT or 1360)")
}

func loadConfig() config.Configer {
	if cfgFile == "" {
		return config.MustLoadFromDotenv("")
	}

	c := config.NewViperConfig(cfgFile)
	if err := c.Load(); err != nil {
		log.Fatalf("Unable to load config %s: %s", cfgFile, err)
	}

	return c
}

func mustGetStorageDir(c config.Configer) string {
	dir, err := homedir.Expand(c.GetKeyWithDefault("ODE_STORAGE_DIR", "~/.odeupload"))
	if err != nil {
		log.Fatalf("Unable to expand ODE_STORAGE_DIR: %s", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Unable to create storage dir %s: %s", dir, err)
	}

	return dir
}
