package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		d    Descriptor
		want string
	}{
		{Descriptor{OS: "android", Arch: "arm"}, "android-arm-eabi"},
		{Descriptor{OS: "android", Arch: "arm64"}, "android-arm64"},
		{Descriptor{OS: "windows", Arch: "amd64"}, "win32-x64-msvc"},
		{Descriptor{OS: "windows", Arch: "arm64"}, "win32-arm64-msvc"},
		{Descriptor{OS: "windows", Arch: "386"}, "win32-ia32-msvc"},
		{Descriptor{OS: "darwin", Arch: "amd64"}, "darwin-x64"},
		{Descriptor{OS: "darwin", Arch: "arm64"}, "darwin-arm64"},
		{Descriptor{OS: "linux", Arch: "amd64", Libc: LibcGlibc}, "linux-x64-gnu"},
		{Descriptor{OS: "linux", Arch: "amd64", Libc: LibcMusl}, "linux-x64-musl"},
		{Descriptor{OS: "linux", Arch: "arm64", Libc: LibcGlibc}, "linux-arm64-gnu"},
		{Descriptor{OS: "linux", Arch: "arm64"}, "linux-arm64-musl"},
		{Descriptor{OS: "linux", Arch: "arm"}, "linux-arm-gnueabihf"},
		{Descriptor{OS: "freebsd", Arch: "amd64"}, "freebsd-x64"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			r := Detect(tc.d)
			assert.True(t, r.Supported)
			assert.Equal(t, tc.want, r.Name)
			assert.Equal(t, tc.want, r.String())
		})
	}
}

func TestDetect_Unsupported(t *testing.T) {
	t.Run("known os, unknown arch", func(t *testing.T) {
		d := Descriptor{OS: "linux", Arch: "riscv64"}
		r := Detect(d)
		assert.False(t, r.Supported)
		assert.Empty(t, r.Name)
		assert.Equal(t, d, r.Descriptor)
		assert.Equal(t, "unsupported: os=Linux platform=linux arch=riscv64", r.String())
	})

	t.Run("unknown os", func(t *testing.T) {
		r := Detect(Descriptor{OS: "plan9", Arch: "amd64"})
		assert.False(t, r.Supported)
		assert.Equal(t, "unsupported: os=null platform=plan9 arch=amd64", r.String())
	})

	t.Run("freebsd arm64", func(t *testing.T) {
		r := Detect(Descriptor{OS: "freebsd", Arch: "arm64"})
		assert.Equal(t, "unsupported: os=FreeBSD platform=freebsd arch=arm64", r.String())
	})
}

func TestDetectLibc(t *testing.T) {
	dir := t.TempDir()
	loader := filepath.Join(dir, "ld.so")
	assert.Equal(t, LibcMusl, detectLibc([]string{loader}))

	assert.NoError(t, os.WriteFile(loader, nil, 0o644))
	assert.Equal(t, LibcGlibc, detectLibc([]string{filepath.Join(dir, "missing"), loader}))
}

func TestCurrent(t *testing.T) {
	assert.NotEmpty(t, Current().String())
}
