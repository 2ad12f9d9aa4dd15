package db

import (
	"context"
	"fmt"
)

func str(s string) *string { return &s }

// seedVoices is a small shared catalog covering every provider.
var seedVoices = []Voice{
	{Provider: "doubao", Model: str("speech-1"), Name: "通用女声", VoiceCode: "doubao-standard", Language: str("zh-CN"), Gender: str("female"), SampleURL: str("https://samples.example.com/doubao/standard.mp3")},
	{Provider: "doubao", Model: str("speech-1"), Name: "温暖男声", VoiceCode: "doubao-warm-male", Language: str("zh-CN"), Gender: str("male"), SampleURL: str("https://samples.example.com/doubao/warm-male.mp3")},
	{Provider: "doubao", Model: str("speech-1"), Name: "English Narrator", VoiceCode: "doubao-en-narrator", Language: str("en-US"), Gender: str("male")},
	{Provider: "aliyun", Name: "小云", VoiceCode: "xiaoyun", Language: str("zh-CN"), Gender: str("female"), SampleURL: str("https://samples.example.com/aliyun/xiaoyun.mp3")},
	{Provider: "aliyun", Name: "小刚", VoiceCode: "xiaogang", Language: str("zh-CN"), Gender: str("male")},
	{Provider: "tencent", Name: "智瑜", VoiceCode: "101001", Language: str("zh-CN"), Gender: str("female"), SampleURL: str("https://samples.example.com/tencent/101001.mp3")},
	{Provider: "minimax", Name: "Calm Woman", VoiceCode: "calm_woman", Language: str("en-US"), Gender: str("female")},
}

// Seed fills an empty catalog with the shared voices. It reports how many
// voices were inserted; a non-empty catalog is left alone.
func (s *Store) Seed(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tts_voice").Scan(&n); err != nil {
		return 0, fmt.Errorf("count voices: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i := range seedVoices {
		v := seedVoices[i]
		if err := s.InsertVoice(ctx, &v); err != nil {
			return i, err
		}
	}
	return len(seedVoices), nil
}
