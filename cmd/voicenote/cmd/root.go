package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"voicenote/cmd/voicenote/cmd/cli"
	"voicenote/cmd/voicenote/cmd/migrate"
	"voicenote/cmd/voicenote/cmd/serve"
	"voicenote/cmd/voicenote/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voicenote",
	Short: "Voice notes: upload audio, get back a cleaned-up transcript",
	Long: `voicenote serves the transcription API.

- Uploads are transcribed with Whisper and polished by a chat model
- Results are stored per user in PostgreSQL or SQLite
- Users sign in with GitHub`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&cli.ConfigFile, "config", "c", "", "YAML config file (environment variables take precedence)")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "development logging")
}
