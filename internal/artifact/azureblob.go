package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// AzureBlob uploads artifacts to a container.
type AzureBlob struct {
	client     blobUploader
	accountURL string
	container  string
	prefix     string
}

// NewAzureBlob authenticates with the default Azure credential chain.
func NewAzureBlob(accountURL, container, prefix string) (*AzureBlob, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("artifact: azure credential: %w", err)
	}

	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("artifact: azure client: %w", err)
	}
	return &AzureBlob{
		client:     client,
		accountURL: strings.TrimRight(accountURL, "/"),
		container:  container,
		prefix:     prefix,
	}, nil
}

func (a *AzureBlob) Name() string { return "azblob" }

func (a *AzureBlob) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	name := join(a.prefix, key)
	_, err := a.client.UploadBuffer(ctx, a.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("artifact: azure upload %s: %w", name, err)
	}
	return a.accountURL + "/" + a.container + "/" + name, nil
}
