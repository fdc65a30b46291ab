// Package api is a client for the play.ht text-to-speech API.
//
// A Client lists stock and cloned voices, clones voices from files or URLs,
// creates and inspects asynchronous synthesis jobs, follows job progress over
// server-sent events, and streams synthesized audio in real time.
//
// Credentials (a secret key and a user id) are resolved once by NewClient
// and sent on every request. Every failure is a *errors.Error from
// github.com/AltairaLabs/playht-go/pkg/errors whose Kind tells configuration,
// transport, API, decode and sink failures apart. The client never retries.
//
// Audio is never buffered in full. AudioStream and TTSJobAudio return a lazy
// streaming.ChunkStream; StreamAudio and StreamTTSJobAudio write each chunk
// to a caller-supplied io.Writer before reading the next:
//
//	client, err := api.NewClient()
//	if err != nil {
//	    return err
//	}
//	f, _ := os.Create("hello.mp3")
//	defer f.Close()
//	_, err = client.StreamAudio(ctx, f, api.DefaultTTSStreamRequest("Hello", voiceID))
//
// No deadline is imposed internally; bound latency with the context.
package api
