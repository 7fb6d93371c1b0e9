package files

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// OSS keeps files in an Aliyun OSS bucket and refers to them by public URL.
type OSS struct {
	bucket    *oss.Bucket
	publicURL string
}

var _ Store = (*OSS)(nil)

func NewOSS(conf core.FilesConfig) (*OSS, error) {
	if conf.OSSEndpoint == "" || conf.OSSBucket == "" || conf.OSSAccessKeyID == "" {
		return nil, errors.New("missing OSS endpoint, bucket or access key")
	}
	client, err := oss.New(conf.OSSEndpoint, conf.OSSAccessKeyID, conf.OSSAccessSecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return &OSS{bucket: bucket, publicURL: publicBase(conf)}, nil
}

func publicBase(conf core.FilesConfig) string {
	if conf.OSSPublicURL != "" {
		return strings.TrimRight(conf.OSSPublicURL, "/")
	}
	host := strings.TrimPrefix(strings.TrimPrefix(conf.OSSEndpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", conf.OSSBucket, host)
}

func (s *OSS) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrap(err, "uploading to OSS")
	}
	return s.publicURL + "/" + key, nil
}

func (s *OSS) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.publicURL+"/")
	if key == ref {
		return errors.Errorf("not an OSS upload: %q", ref)
	}
	if err := s.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "deleting from OSS")
	}
	return nil
}
