package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

// HostInfo is a snapshot of the resources frame rendering competes for.
type HostInfo struct {
	LogicalCPUs     int
	TotalMemory     uint64
	AvailableMemory uint64
}

// Host reads CPU and memory figures from the OS.
func Host() (HostInfo, error) {
	cores, err := cpu.Counts(true)
	if err != nil {
		return HostInfo{}, fmt.Errorf("cpu counts: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return HostInfo{}, fmt.Errorf("virtual memory: %w", err)
	}
	return HostInfo{
		LogicalCPUs:     cores,
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
	}, nil
}

// framesPerWorker is how many full frames one render worker keeps alive:
// the frame itself, bubble layers and blur scratch.
const framesPerWorker = 6

// RecommendedWorkers sizes the render pool for frames of frameBytes each.
func RecommendedWorkers(frameBytes int) int {
	info, err := Host()
	if err != nil {
		log.Printf("[!] Не удалось получить параметры системы: %v", err)
		return 1
	}
	return workersFor(info, frameBytes)
}

func workersFor(info HostInfo, frameBytes int) int {
	workers := max(info.LogicalCPUs, 1)
	if frameBytes > 0 && info.AvailableMemory > 0 {
		// At most half the free memory goes to frames
		byMemory := int(info.AvailableMemory / 2 / uint64(frameBytes*framesPerWorker))
		workers = min(workers, max(byMemory, 1))
	}
	return workers
}

func FindLatestAudio(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		isAudio := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isAudio = true
				break
			}
		}
		if isAudio {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено аудио-файлов", dir)
	}

	return latestFile, nil
}

func GetBestH264Encoder() string {
	// Priorities:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	cmd := exec.Command("ffmpeg", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}
