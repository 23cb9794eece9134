// Package azblob stores objects as block blobs in one Azure Storage container,
// using blob ETags for conditional writes.
package azblob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
)

const contentType = "application/json"

// Bucket implements objectstore.Bucket on an Azure blob container.
type Bucket struct {
	container *container.Client
}

// NewFromConnectionString opens containerName with an account connection string.
// Both values are passed to the SDK untouched.
func NewFromConnectionString(connectionString, containerName string) (*Bucket, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure storage client: %w", err)
	}
	return New(client.ServiceClient().NewContainerClient(containerName)), nil
}

func New(c *container.Client) *Bucket {
	return &Bucket{container: c}
}

// EnsureContainer creates the container if it does not exist yet.
func (b *Bucket) EnsureContainer(ctx context.Context) error {
	_, err := b.container.Create(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container: %w", err)
	}
	return nil
}

func (b *Bucket) Get(ctx context.Context, key string) (*objectstore.Object, error) {
	resp, err := b.container.NewBlobClient(key).DownloadStream(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, objectstore.ErrNotExist
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	obj := &objectstore.Object{Key: key, Data: data}
	if resp.ETag != nil {
		obj.ETag = string(*resp.ETag)
	}
	return obj, nil
}

func (b *Bucket) Create(ctx context.Context, key string, data []byte) (string, error) {
	return b.upload(ctx, key, data, &blob.ModifiedAccessConditions{IfNoneMatch: to.Ptr(azcore.ETagAny)})
}

func (b *Bucket) Replace(ctx context.Context, key string, data []byte, etag string) (string, error) {
	return b.upload(ctx, key, data, &blob.ModifiedAccessConditions{IfMatch: to.Ptr(azcore.ETag(etag))})
}

// upload is a single Put Blob call, so the blob is replaced atomically.
func (b *Bucket) upload(ctx context.Context, key string, data []byte, cond *blob.ModifiedAccessConditions) (string, error) {
	body := streaming.NopCloser(bytes.NewReader(data))
	resp, err := b.container.NewBlockBlobClient(key).Upload(ctx, body, &blockblob.UploadOptions{
		HTTPHeaders:      &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
		AccessConditions: &blob.AccessConditions{ModifiedAccessConditions: cond},
	})
	if err != nil {
		return "", mapConditionErr(key, err)
	}
	if resp.ETag == nil {
		return "", fmt.Errorf("upload %s: response carried no etag", key)
	}
	return string(*resp.ETag), nil
}

func (b *Bucket) Delete(ctx context.Context, key, etag string) error {
	_, err := b.container.NewBlobClient(key).Delete(ctx, &blob.DeleteOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfMatch: to.Ptr(azcore.ETag(etag))},
		},
	})
	if err != nil {
		return mapConditionErr(key, err)
	}
	return nil
}

func (b *Bucket) Keys(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		pager := b.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield("", fmt.Errorf("list blobs: %w", err))
				return
			}
			for _, item := range page.Segment.BlobItems {
				if item.Name == nil {
					continue
				}
				if !yield(*item.Name, nil) {
					return
				}
			}
		}
	}
}

func (b *Bucket) Ping(ctx context.Context) error {
	_, err := b.container.GetProperties(ctx, nil)
	return err
}

func mapConditionErr(key string, err error) error {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return objectstore.ErrNotExist
	case bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet):
		return objectstore.ErrPreconditionFailed
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == 412 {
		return objectstore.ErrPreconditionFailed
	}
	return fmt.Errorf("blob %s: %w", key, err)
}
