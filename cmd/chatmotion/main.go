package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/engine"
	"github.com/ivlev/chatmotion/internal/source"
	"github.com/ivlev/chatmotion/internal/system"
	"github.com/ivlev/chatmotion/internal/video"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", director.ScenariosDir, "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scenarioPtr := flag.String("scenario", "", "Путь к сценарию YAML (по умолчанию: самый свежий файл в scenarios/, иначе встроенный)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", 0, "Ширина (0 - из сценария)")
	heightPtr := flag.Int("height", 0, "Высота (0 - из сценария)")
	fpsPtr := flag.Int("fps", 0, "FPS (0 - из сценария)")
	workersPtr := flag.Int("workers", 0, "Потоки (0 - по числу ядер и свободной памяти)")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	noAudioPtr := flag.Bool("no-audio", false, "Не искать аудио в input/audio/")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	debugPtr := flag.Bool("debug", false, "Печатать QR-код с номером кадра в углу")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	dumpPtr := flag.String("dump-states", "", "Сохранить состояния всех кадров в YAML")
	writeScenarioPtr := flag.Bool("write-scenario", false, "Сохранить итоговый сценарий в scenarios/ и выйти")

	flag.Parse()

	scenarioPath := *scenarioPtr
	if scenarioPath == "" {
		latest, err := director.FindLatestScenario(director.ScenariosDir)
		if err == nil {
			scenarioPath = latest
			fmt.Printf("[*] Выбран сценарий: %s\n", scenarioPath)
		}
	}

	scenario := director.DefaultScenario()
	if scenarioPath != "" {
		sc, err := director.ReadScenario(scenarioPath)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		scenario = sc
	} else {
		fmt.Println("[*] Используется встроенный сценарий")
	}

	if w, h, ok := config.PresetSize(*presetPtr); ok {
		scenario.Scene.Width, scenario.Scene.Height = w, h
	} else if *presetPtr != "" {
		log.Fatalf("[-] Неизвестный пресет: %s", *presetPtr)
	}
	if *widthPtr > 0 {
		scenario.Scene.Width = *widthPtr
	}
	if *heightPtr > 0 {
		scenario.Scene.Height = *heightPtr
	}
	if *fpsPtr > 0 {
		scenario.Scene.FPS = *fpsPtr
	}
	if err := scenario.Validate(); err != nil {
		log.Fatalf("[-] Ошибка сценария: %v", err)
	}

	if *writeScenarioPtr {
		path := director.GenerateScenarioPath()
		if err := director.WriteScenario(scenario, path); err != nil {
			log.Fatalf("[-] Ошибка записи сценария: %v", err)
		}
		fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", path)
		return
	}

	src, err := source.NewSceneSource(scenario, *debugPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	// Обработка аудио
	audioPath := *audioPtr
	if audioPath == "" && !*noAudioPtr {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		nameSource := "chat"
		if scenarioPath != "" {
			nameSource = scenarioPath
		}
		baseName := filepath.Base(nameSource)
		ext := filepath.Ext(baseName)
		nameOnly := strings.TrimSuffix(baseName, ext)
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		quality = config.DefaultQuality(encoderName)
	}

	workers := *workersPtr
	if workers <= 0 {
		w, h := src.Dimensions()
		workers = system.RecommendedWorkers(w * h * 4)
	}

	cfg := &config.Config{
		ScenarioPath: scenarioPath,
		OutputVideo:  finalOutput,
		Width:        scenario.Scene.Width,
		Height:       scenario.Scene.Height,
		FPS:          scenario.Scene.FPS,
		Workers:      workers,
		AudioPath:    audioPath,
		Preset:       *presetPtr,
		VideoEncoder: encoderName,
		Quality:      quality,
		Debug:        *debugPtr,
		ShowStats:    *statsPtr,
		DumpStates:   *dumpPtr,
		BuildVersion: buildVersion,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{}

	project := engine.NewVideoProject(cfg, src, src.Scene(), ve)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}
