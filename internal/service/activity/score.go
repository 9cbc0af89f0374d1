package activity

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidScore is returned when the mood score is not a finite number.
var ErrInvalidScore = errors.New("mood score must be a number")

const (
	MinScore = 0.0
	MaxScore = 5.0
)

// Band is a fixed range of mood scores with its activity theme. Bands are
// upper-inclusive: (Min, Max], except the first which also includes Min.
type Band struct {
	Label    string
	Min      float64
	Max      float64
	Theme    string
	Fallback string
}

// Bands covers [MinScore, MaxScore] in ascending order.
var Bands = []Band{
	{
		Label:    "0–1",
		Min:      0,
		Max:      1,
		Theme:    "อารมณ์ดิ่งมาก เน้นการดูแลตัวเองเบา ๆ การพัก และการหาคนที่ไว้ใจคุยด้วย",
		Fallback: "วันนี้คงหนักมากเลยนะ ลองหายใจลึก ๆ ช้า ๆ ดื่มน้ำอุ่น แล้วทักหาคนที่ไว้ใจสักคน ถ้ารู้สึกไม่ไหวโทรสายด่วนสุขภาพจิต 1323 ได้ตลอดเลยนะ",
	},
	{
		Label:    "1.1–2",
		Min:      1,
		Max:      2,
		Theme:    "อารมณ์ไม่ค่อยดี เน้นกิจกรรมผ่อนคลายที่ทำได้ง่ายอยู่กับที่",
		Fallback: "ลองฟังเพลงที่ชอบเบา ๆ อาบน้ำอุ่น หรือเขียนระบายความรู้สึกลงกระดาษดูนะ ไม่ต้องรีบรู้สึกดีขึ้นก็ได้",
	},
	{
		Label:    "2.1–3",
		Min:      2,
		Max:      3,
		Theme:    "อารมณ์กลาง ๆ เน้นกิจกรรมที่ช่วยเติมพลังเล็กน้อย",
		Fallback: "ลองออกไปเดินเล่นสั้น ๆ รับลม หรือวาดรูปเล่นสักพัก อาจช่วยให้ใจเบาขึ้นนะ",
	},
	{
		Label:    "3.1–4",
		Min:      3,
		Max:      4,
		Theme:    "อารมณ์ค่อนข้างดี เน้นกิจกรรมสร้างสรรค์หรือได้เจอผู้คน",
		Fallback: "วันนี้ดูใจดีขึ้นนะ ลองทำอาหารเมนูใหม่ ดูหนังเรื่องที่อยากดู หรือชวนเพื่อนไปคาเฟ่ดูสิ",
	},
	{
		Label:    "4.1–5",
		Min:      4,
		Max:      5,
		Theme:    "อารมณ์ดีมาก เน้นกิจกรรมที่ต่อยอดความสุขและแบ่งปันให้คนรอบข้าง",
		Fallback: "ดีใจด้วยนะที่วันนี้รู้สึกดี! ลองออกกำลังกาย เริ่มงานอดิเรกใหม่ หรือส่งข้อความดี ๆ ให้คนที่เรารักดู",
	},
}

// ParseScore reads a mood score from user input. It does not clamp.
func ParseScore(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, ErrInvalidScore
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrInvalidScore
	}
	return value, nil
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// BandFor returns the band that contains the clamped score.
func BandFor(score float64) Band {
	score = Clamp(score)
	for _, band := range Bands {
		if score <= band.Max {
			return band
		}
	}
	return Bands[len(Bands)-1]
}
