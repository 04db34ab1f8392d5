package explain

import (
	"strconv"
	"strings"
)

// Grounding is one retrieved verse offered to the generator.
type Grounding struct {
	ID     int64
	Arabic string
	Urdu   string
}

// SystemPrompt returns the Urdu scholar instruction with the minimum word count.
func SystemPrompt(minWords int) string {
	return `آپ ایک اسلامی عالم ہیں جو قرآنی آیات کی مفصل وضاحت کرتے ہیں۔ آپ کو قرآنی آیات کا حوالہ دیا جائے گا اور صارف کا سوال۔

آپ کو ہر آیت کی تفصیلی وضاحت اردو میں پیش کرنی ہے۔ وضاحت میں شامل ہونا چاہیے:
1. آیت کا سیاق و سباق
2. لفظی ترجمہ اور معنی
3. تفصیلی تشریح
4. عملی مشورے
5. فرد اور معاشرے پر اثرات

ہدایات:
- صرف اردو زبان استعمال کریں
- سادہ اور واضح زبان استعمال کریں
- کم از کم ` + strconv.Itoa(minWords) + ` الفاظ کی وضاحت دیں
- عملی مشورے اور مثالوں سے سمجھائیں`
}

// UserPrompt lists each grounding verse by position and locator id under the query.
func UserPrompt(query string, grounding []Grounding, minWords int) string {
	var ctx strings.Builder
	for i, g := range grounding {
		ctx.WriteString("آیت " + strconv.Itoa(i+1) + " (آیت ID: " + strconv.FormatInt(g.ID, 10) + "):\n")
		ctx.WriteString("عربی متن: " + g.Arabic + "\n")
		ctx.WriteString("اردو ترجمہ: " + g.Urdu + "\n\n")
	}

	return `
سوال: ` + query + `

متعلقہ قرآنی آیات:
` + ctx.String() + `
براہ کرم ان آیات کی اردو میں تفصیلی وضاحت کریں۔ وضاحت کم از کم ` + strconv.Itoa(minWords) + ` الفاظ کی ہونی چاہیے اور درج ذیل پہلوؤں کا احاطہ کرنی چاہیے:
1. ہر آیت کا سیاق و سباق
2. ہر آیت کا لفظی معنی
3. تفصیلی تشریح
4. عملی مشورے برائے روزمرہ زندگی
5. ان آیات سے ملنے والی کلیدی تعلیمات

وضاحت:`
}
