package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jaidee/backend/internal/config"
	"github.com/jaidee/backend/internal/service/activity"
	"github.com/jaidee/backend/internal/service/ai"
	"github.com/jaidee/backend/internal/service/chat"
	emotionservice "github.com/jaidee/backend/internal/service/emotion"
	riskservice "github.com/jaidee/backend/internal/service/risk"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	mode := flag.String("mode", "", "测试模式: chat, diary 或 pont")
	text := flag.String("text", "", "输入文本；chat 模式留空时从标准输入逐行读取")
	timeout := flag.Duration("timeout", 2*time.Minute, "整体超时时间")

	flag.Parse()

	if *mode != "chat" && *mode != "diary" && *mode != "pont" {
		flag.Usage()
		log.Fatal("请通过 -mode=chat、-mode=diary 或 -mode=pont 指定测试模式")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gateway, err := ai.NewGateway(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("初始化模型网关失败: %v", err)
	}

	switch *mode {
	case "chat":
		runChat(ctx, gateway, cfg, *text)
	case "diary":
		runDiary(ctx, gateway, cfg, *text)
	case "pont":
		runPont(ctx, gateway, cfg, *text)
	}
}

func runChat(ctx context.Context, gateway ai.Gateway, cfg *config.Config, text string) {
	svc := chat.NewService(gateway, chat.NewMemoryStore(), chat.Options{
		HistoryLimit: cfg.Chat.HistoryLimit,
		MaxParts:     cfg.Chat.MaxParts,
		MaxTokens:    cfg.AI.ChatMaxTokens,
	})

	session, err := svc.CreateSession(ctx)
	if err != nil {
		log.Fatalf("创建会话失败: %v", err)
	}
	log.Printf("开始 chat 测试: session=%s provider=%s model=%s", session.ID, cfg.AI.Provider, cfg.AI.ModelName())

	send := func(line string) {
		start := time.Now()
		reply, err := svc.Reply(ctx, session.ID, line)
		if err != nil {
			log.Printf("[WARN] 输入被拒绝: %v", err)
			return
		}
		for _, part := range reply.Parts {
			fmt.Println(part)
			fmt.Println()
		}
		log.Printf("回复完成: parts=%d fallback=%t 耗时=%s", len(reply.Parts), reply.Fallback, time.Since(start))
	}

	if strings.TrimSpace(text) != "" {
		send(text)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		send(line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("读取标准输入失败: %v", err)
	}
}

func runDiary(ctx context.Context, gateway ai.Gateway, cfg *config.Config, text string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("diary 模式需要通过 -text 指定日记内容")
	}

	riskSvc := riskservice.NewService(gateway, riskservice.Config{
		ExtraPhrases: cfg.Triage.ExtraRiskPhrases,
		MaxTokens:    cfg.AI.ClassifyMaxTokens,
	})
	emotionSvc := emotionservice.NewService(gateway, emotionservice.Config{
		Enabled:   cfg.Triage.EmotionLLMEnabled,
		MaxTokens: cfg.AI.ClassifyMaxTokens,
	})

	level := riskSvc.Classify(ctx, text)
	label := emotionSvc.Classify(ctx, text)
	log.Printf("diary 分析完成: risk=%s emotion=%s (%s)", level, label, label.Thai())
}

func runPont(ctx context.Context, gateway ai.Gateway, cfg *config.Config, text string) {
	score, err := activity.ParseScore(text)
	if err != nil {
		log.Fatalf("pont 模式需要数字分数: %v", err)
	}

	svc := activity.NewService(gateway, activity.Config{MaxTokens: cfg.AI.RecommendMaxTokens})
	rec := svc.Recommend(ctx, score)
	log.Printf("pont 推荐完成: score=%.1f band=%s fallback=%t", rec.Score, rec.Band.Label, rec.Fallback)
	fmt.Println(rec.Text)
}
