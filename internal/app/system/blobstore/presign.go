// internal/app/system/blobstore/presign.go
package blobstore

import (
	"context"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type v4PresignedRequest = v4.PresignedHTTPRequest

// presignAdapter narrows *s3.PresignClient to the one call the store uses,
// so tests can substitute a fake.
type presignAdapter struct {
	pc *s3.PresignClient
}

func (a presignAdapter) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error) {
	return a.pc.PresignGetObject(ctx, in, optFns...)
}
