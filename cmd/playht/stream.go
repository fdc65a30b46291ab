package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/playht-go/logger"
	"github.com/AltairaLabs/playht-go/version"
)

func newStreamCmd(a *app) *cobra.Command {
	var (
		tts    ttsFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Synthesize text and stream the audio as it is generated",
		Example: `  playht stream --voice s3://voice-cloning-zero-shot/... --text "Hello" -o hello.mp3
  playht stream --voice ... --text "Hello" --format wav | aplay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := tts.streamRequest()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			w, err := openOutput(cmd, output)
			if err != nil {
				return err
			}

			result, err := client.StreamAudio(cmd.Context(), w, req)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			logger.Info("audio written", "output", output, "bytes", result.Bytes, "chunks", result.Chunks)
			return nil
		},
	}
	tts.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	return cmd
}

func newStreamURLCmd(a *app) *cobra.Command {
	var tts ttsFlags
	cmd := &cobra.Command{
		Use:   "stream-url",
		Short: "Request a URL from which the synthesized audio can be fetched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := tts.streamRequest()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			u, err := client.GetAudioStreamURL(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	tts.register(cmd, true)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
		},
	}
}
