package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lakshyashishir/appinventor-sources/pkg/upload"
	"github.com/lakshyashishir/appinventor-sources/pkg/uploadclient"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var (
	pushServerURL string
	pushBasePath  string
	pushKeyname   string
	pushAPIKey    string
	pushFields    map[string]string
)

var pushCmd = &cobra.Command{
	Use:   "push <kind> <file> [params...]",
	Short: "Upload a file to an ODE upload server",
	Long: `Upload a file as one of the kinds the server accepts, for example:

  odeuploadd push project ~/Hello.aia Hello
  odeuploadd push file Screen1.scm 42 src/Screen1.scm
  odeuploadd push globalasset logo.png --field name=logo --field type=image`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := upload.ParseKind(args[0])
		if err != nil {
			return err
		}

		path, err := homedir.Expand(args[1])
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		apikey := pushAPIKey
		if apikey == "" {
			apikey = os.Getenv("ODE_APIKEY")
		}

		client := uploadclient.NewClient(pushServerURL, pushBasePath, pushKeyname, apikey)
		result, err := client.Push(cmd.Context(), uploadclient.Upload{
			Kind:     kind,
			Params:   args[2:],
			Fields:   pushFields,
			FileName: filepath.Base(path),
			File:     f,
		})

		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.FormatAsString())
		if !result.IsSuccess() {
			return fmt.Errorf("upload of %s failed with %s", path, result.Status)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().StringVarP(&pushServerURL, "server", "s", "http://localhost:1360", "upload server url")
	pushCmd.Flags().StringVar(&pushBasePath, "base", "/ode", "path prefix of the upload routes")
	pushCmd.Flags().StringVar(&pushKeyname, "keyname", "apikey", "header the api key is sent in")
	pushCmd.Flags().StringVarP(&pushAPIKey, "apikey", "k", "", "api key (default is ODE_APIKEY)")
	pushCmd.Flags().StringToStringVarP(&pushFields, "field", "f", nil, "extra form field as name=value")
}
