package cover

import (
	"testing"

	"github.com/draftflow/core/internal/config"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		opts config.S3Options
		want string
	}{
		{
			"custom domain",
			config.S3Options{CustomDomain: "https://cdn.example.com/", Bucket: "covers"},
			"https://cdn.example.com/covers/a1/img.png",
		},
		{
			"path style endpoint",
			config.S3Options{Endpoint: "https://minio.internal:9000", Bucket: "covers", PathStyleAccess: true},
			"https://minio.internal:9000/covers/covers/a1/img.png",
		},
		{
			"virtual host endpoint",
			config.S3Options{Endpoint: "https://r2.example.com", Bucket: "covers"},
			"https://covers.r2.example.com/covers/a1/img.png",
		},
		{
			"aws default",
			config.S3Options{Bucket: "covers", Region: "eu-west-1"},
			"https://covers.s3.eu-west-1.amazonaws.com/covers/a1/img.png",
		},
	}
	for _, tc := range cases {
		s := &Service{opts: tc.opts}
		if got := s.publicURL("covers/a1/img.png"); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUploadDisabled(t *testing.T) {
	s := &Service{}
	if _, err := s.Upload(nil, nil, nil); err != ErrDisabled {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
