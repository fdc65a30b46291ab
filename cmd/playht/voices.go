package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/playht-go/api"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVoicesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List stock voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			voices, err := client.ListVoices(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), voices)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLANGUAGE\tGENDER\tACCENT")
			for _, v := range voices {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Language, v.Gender, v.Accent)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newClonedVoicesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "cloned-voices",
		Short: "List cloned voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			voices, err := client.ListClonedVoices(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), voices)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE")
			for _, v := range voices {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Name, v.Type)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newCloneCmd(a *app) *cobra.Command {
	var (
		name     string
		mimeType string
		fromURL  string
	)
	cmd := &cobra.Command{
		Use:   "clone [sample-file]",
		Short: "Clone a voice from an audio sample",
		Example: `  playht clone --name narrator --mime-type audio/mpeg sample.mp3
  playht clone --name narrator --url https://example.com/sample.mp3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (fromURL != "") {
				return fmt.Errorf("give either a sample file or --url")
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			var voice *api.ClonedVoice
			if fromURL != "" {
				voice, err = client.CloneVoiceFromURL(cmd.Context(), api.CloneVoiceURLRequest{
					SampleFileURL: fromURL,
					VoiceName:     name,
				})
			} else {
				voice, err = client.CloneVoiceFromFile(cmd.Context(), api.CloneVoiceFileRequest{
					SampleFile: args[0],
					VoiceName:  name,
					MIMEType:   mimeType,
				})
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), voice)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name of the cloned voice")
	cmd.Flags().StringVar(&mimeType, "mime-type", "audio/mpeg", "Media type of the sample file")
	cmd.Flags().StringVar(&fromURL, "url", "", "Clone from a sample hosted at this URL")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDeleteCloneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-clone <voice-id>",
		Short: "Delete a cloned voice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.DeleteClonedVoice(cmd.Context(), api.DeleteClonedVoiceRequest{VoiceID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}
