package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/logger"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

func newJobCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Create and follow asynchronous text-to-speech jobs",
	}
	cmd.AddCommand(
		newJobCreateCmd(a),
		newJobGetCmd(a),
		newJobProgressCmd(a),
		newJobAudioCmd(a),
	)
	return cmd
}

func newJobCreateCmd(a *app) *cobra.Command {
	var (
		tts    ttsFlags
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a job",
		Long: `Submit a job and print it. With --follow the job's progress events are
printed as they arrive, one JSON object per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := tts.jobRequest()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			if !follow {
				job, err := client.CreateTTSJob(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), job)
			}

			ps, err := client.CreateTTSJobWithProgress(cmd.Context(), req)
			if err != nil {
				return err
			}
			defer ps.Close()
			if loc := ps.Location(); loc != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "progress:", loc)
			}
			return printProgress(cmd, ps)
		},
	}
	tts.register(cmd, false)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream progress events until the job finishes")
	return cmd
}

func newJobGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			job, err := client.GetTTSJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newJobProgressCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "progress <job-id>",
		Short: "Follow a job's progress events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}

			if raw {
				_, err := client.CopyTTSJobProgress(cmd.Context(), cmd.OutOrStdout(), args[0])
				return err
			}

			ps, err := client.TTSJobProgress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ps.Close()
			return printProgress(cmd, ps)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Copy the raw event stream instead of decoding it")
	return cmd
}

// printProgress writes each decoded event as one JSON line. Undecodable
// frames are logged and skipped.
func printProgress(cmd *cobra.Command, ps *api.ProgressStream) error {
	out := cmd.OutOrStdout()
	for {
		ev, err := ps.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case pkgerrors.IsKind(err, pkgerrors.KindDecode):
			logger.Warn("skipping progress frame", "error", err)
			continue
		case err != nil:
			return err
		}
		line := struct {
			Event string `json:"event,omitempty"`
			api.ProgressEvent
		}{ev.Event, ev}
		if err := json.NewEncoder(out).Encode(line); err != nil {
			return err
		}
	}
}

func newJobAudioCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "audio <job-id>",
		Short: "Download the audio of a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			w, err := openOutput(cmd, output)
			if err != nil {
				return err
			}

			result, err := client.StreamTTSJobAudio(cmd.Context(), w, args[0])
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
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	return cmd
}
