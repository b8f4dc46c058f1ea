package archive

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/logger"
)

const downloadTimeout = 10 * time.Minute

// transportError tags failures that originated in the fetch stage, so the
// join can attribute mid-stream read errors to the transport rather than to
// extraction.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// taggedBody wraps the response body so that read failures surface as
// transport errors when io.Copy reports them.
type taggedBody struct {
	r io.Reader
}

func (t *taggedBody) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		err = &transportError{err: err}
	}
	return n, err
}

// streamTarball runs the fetch stage and the consume stage concurrently,
// joined through an in-memory pipe, and waits for both to finish. Peak
// memory stays independent of archive size. A transport failure is reported
// as a *FetchError even when it also broke the consume stage.
func streamTarball(ctx context.Context, tarballURL string, consume func(io.Reader) error) error {
	pr, pw := io.Pipe()
	fetchCh := make(chan error, 1)

	go func() {
		fetchCh <- fetchStage(ctx, tarballURL, pw)
	}()

	consumeErr := consume(pr)
	// Closing the read side releases the fetch stage if consumption aborted early.
	pr.CloseWithError(consumeErr)
	fetchErr := <-fetchCh

	if fetchErr != nil {
		return &FetchError{URL: tarballURL, Err: fetchErr}
	}
	return consumeErr
}

// fetchStage downloads the tarball into the pipe. It returns an error only
// for transport-level failures; a broken pipe caused by the consume stage is
// the consume stage's failure to report.
func fetchStage(ctx context.Context, tarballURL string, pw *io.PipeWriter) error {
	client := &http.Client{Timeout: downloadTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tarballURL, nil)
	if err != nil {
		pw.CloseWithError(err)
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		pw.CloseWithError(err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.Errorf("HTTP %d", resp.StatusCode)
		pw.CloseWithError(err)
		return err
	}

	logger.G(ctx).WithField("url", tarballURL).Debug("streaming tarball")

	_, err = io.Copy(pw, &taggedBody{r: resp.Body})
	if err != nil {
		var te *transportError
		if errors.As(err, &te) {
			pw.CloseWithError(te.err)
			return te.err
		}
		// Write-side failure: the consume stage already owns the report.
		pw.CloseWithError(err)
		return nil
	}

	pw.Close()
	return nil
}
