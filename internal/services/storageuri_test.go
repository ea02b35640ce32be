package services

import "testing"

func TestNormalizeToGSURI(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "gs passthrough",
			in:   "gs://my-bucket/media/loc/video.mp4",
			want: "gs://my-bucket/media/loc/video.mp4",
		},
		{
			name: "firebase download url",
			in:   "https://firebasestorage.googleapis.com/v0/b/my-bucket.appspot.com/o/media%2Floc%2Fvideo.mp4?alt=media&token=abc",
			want: "gs://my-bucket.appspot.com/media/loc/video.mp4",
		},
		{
			name: "plain gcs url",
			in:   "https://storage.googleapis.com/my-bucket/media/loc/video.mp4",
			want: "gs://my-bucket/media/loc/video.mp4",
		},
		{
			name: "surrounding whitespace",
			in:   "  gs://my-bucket/a.mp4 ",
			want: "gs://my-bucket/a.mp4",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeToGSURI(tc.in)
			if err != nil {
				t.Fatalf("NormalizeToGSURI(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// Unrecognized shapes keep the original URL so the annotation call can
// still attempt the fetch; only a provably wrong rewrite is worse than
// no rewrite.
func TestNormalizeToGSURIFallsBackToOriginal(t *testing.T) {
	passthrough := []string{
		"https://cdn.example.com/videos/kitchen.mp4",
		"https://example.com/video.mp4",
		"https://firebasestorage.googleapis.com/v1/b/bucket/o/obj",
		"https://firebasestorage.googleapis.com/v0/b//o/obj",
		"https://storage.googleapis.com/bucketonly",
		"ftp://storage.googleapis.com/bucket/obj",
		"http://storage.googleapis.com/bucket/obj",
	}
	for _, in := range passthrough {
		got, err := NormalizeToGSURI(in)
		if err != nil {
			t.Errorf("NormalizeToGSURI(%q): %v", in, err)
			continue
		}
		if got != in {
			t.Errorf("NormalizeToGSURI(%q) = %q, want original URL back", in, got)
		}
	}
}

func TestNormalizeToGSURIRejects(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"https://storage.googleapis.com/bucket/obj\x7f%zz",
	}
	for _, in := range bad {
		if got, err := NormalizeToGSURI(in); err == nil {
			t.Errorf("NormalizeToGSURI(%q) = %q, want error", in, got)
		}
	}
}
