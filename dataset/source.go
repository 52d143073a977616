package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/YuminosukeSato/grove/pkg/errors"
	"github.com/YuminosukeSato/grove/pkg/log"
)

// Source identifies where training data lives and knows how to open it.
type Source interface {
	// Open returns a reader over the raw data. The caller closes it.
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// LocalSource reads a file on the local filesystem.
type LocalSource struct {
	Path string
}

func (s LocalSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	return f, nil
}

func (s LocalSource) String() string {
	return s.Path
}

// BlobSource streams a blob from an Azure Storage container using the
// ambient credential chain (environment, workload identity, CLI).
type BlobSource struct {
	// AccountURL is the blob service endpoint, e.g.
	// https://myaccount.blob.core.windows.net/
	AccountURL string
	Container  string
	Blob       string
}

func (s BlobSource) Open(ctx context.Context) (io.ReadCloser, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "blob credential")
	}
	client, err := azblob.NewClient(s.AccountURL, cred, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "blob client for %s", s.AccountURL)
	}
	resp, err := client.DownloadStream(ctx, s.Container, s.Blob, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", s)
	}
	return resp.Body, nil
}

func (s BlobSource) String() string {
	return fmt.Sprintf("%s%s/%s", s.AccountURL, s.Container, s.Blob)
}

// Load opens src and decodes it as CSV into a Dataset.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	logger := log.GetLogger()
	start := time.Now()

	r, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			logger.Warn("closing data source failed",
				log.SourceKey, src.String(),
				log.ErrAttrKey, cerr,
			)
		}
	}()

	ds, err := ReadCSV(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", src)
	}

	logger.Info("dataset loaded",
		log.SourceKey, src.String(),
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, ds.NumFeatures(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}
