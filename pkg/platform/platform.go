// Package platform 把操作系统/架构描述归类为预编译包常用的平台字符串，
// 例如 "linux-x64-gnu"、"darwin-arm64"。
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Libc 区分Linux上的C库实现
type Libc int

const (
	LibcUnknown Libc = iota
	LibcGlibc
	LibcMusl
)

// Descriptor 描述一个运行平台，OS 和 Arch 使用 GOOS/GOARCH 的取值
type Descriptor struct {
	OS   string
	Arch string
	Libc Libc
}

// Result 是归类结果。Supported 为 false 时 Name 为空，Descriptor 保留原始输入。
type Result struct {
	Name       string
	Supported  bool
	Descriptor Descriptor
}

func (r Result) String() string {
	if r.Supported {
		return r.Name
	}
	return fmt.Sprintf("unsupported: os=%s platform=%s arch=%s",
		osDisplayName(r.Descriptor.OS), r.Descriptor.OS, r.Descriptor.Arch)
}

// Detect 是纯函数，不做任何I/O
func Detect(d Descriptor) Result {
	name := classify(d)
	return Result{Name: name, Supported: name != "", Descriptor: d}
}

func classify(d Descriptor) string {
	switch d.OS {
	case "android":
		switch d.Arch {
		case "arm":
			return "android-arm-eabi"
		case "arm64":
			return "android-arm64"
		}
	case "windows":
		switch d.Arch {
		case "amd64":
			return "win32-x64-msvc"
		case "arm64":
			return "win32-arm64-msvc"
		case "386":
			return "win32-ia32-msvc"
		}
	case "darwin":
		switch d.Arch {
		case "amd64":
			return "darwin-x64"
		case "arm64":
			return "darwin-arm64"
		}
	case "linux":
		switch d.Arch {
		case "amd64", "arm64":
			suffix := "musl"
			if d.Libc == LibcGlibc {
				suffix = "gnu"
			}
			return fmt.Sprintf("linux-%s-%s", nodeArch(d.Arch), suffix)
		case "arm":
			return "linux-arm-gnueabihf"
		}
	case "freebsd":
		if d.Arch == "amd64" {
			return "freebsd-x64"
		}
	}
	return ""
}

func nodeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	}
	return goarch
}

// osDisplayName 只覆盖有已知平台字符串的系统，其余返回 "null"
func osDisplayName(goos string) string {
	switch goos {
	case "android":
		return "Android"
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	case "linux":
		return "Linux"
	case "freebsd":
		return "FreeBSD"
	}
	return "null"
}

// glibc 动态加载器的常见位置
var glibcLoaders = []string{
	"/lib64/ld-linux-x86-64.so.2",
	"/lib/ld-linux-aarch64.so.1",
	"/lib/x86_64-linux-gnu/libc.so.6",
	"/lib/aarch64-linux-gnu/libc.so.6",
	"/lib64/libc.so.6",
}

// Current 描述当前进程所在的平台
func Current() Result {
	d := Descriptor{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if d.OS == "linux" {
		d.Libc = detectLibc(glibcLoaders)
	}
	return Detect(d)
}

func detectLibc(paths []string) Libc {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return LibcGlibc
		}
	}
	return LibcMusl
}
