package explain

import (
	"strconv"
	"strings"
)

// Fallback renders the templated Urdu explanation used when generation is exhausted.
// It cites every id and performs no I/O.
func Fallback(query string, topic Topic, ids []int64) string {
	cited := make([]string, len(ids))
	for i, id := range ids {
		cited[i] = "آیت " + strconv.FormatInt(id, 10)
	}

	var b strings.Builder
	b.WriteString("\n**سوال: \"" + query + "\" کے بارے میں قرآنی رہنمائی**\n\n")
	b.WriteString("**متعلقہ آیات:** " + strings.Join(cited, ", ") + "\n\n")
	b.WriteString("**تفصیلی وضاحت:**\n\n")
	b.WriteString("قرآن مجید میں " + topic.Name + " کو خصوصی اہمیت حاصل ہے۔ ")
	b.WriteString("مندرجہ بالا آیات " + topic.Name + " کے مختلف پہلوؤں پر روشنی ڈالتی ہیں۔\n\n")
	b.WriteString("**اہم نکات:**\n\n")
	b.WriteString("1. **" + topic.Name + " کی قرآن میں اہمیت:** قرآن پاک میں " + topic.Name + " کی فضیلت بیان کی گئی ہے۔\n\n")
	b.WriteString("2. **کلیدی فوائد:**\n")
	for _, benefit := range topic.Benefits {
		b.WriteString("   - " + benefit + "\n")
	}
	b.WriteString("\n3. **عملی مشورے:**\n")
	b.WriteString("   - " + topic.Name + " کو پوری توجہ اور خلوص نیت سے ادا کریں\n")
	b.WriteString("   - اس کے شرائط و آداب کا مکمل خیال رکھیں\n")
	b.WriteString("   - " + topic.Name + " کو روزمرہ زندگی کا لازمی حصہ بنائیں\n\n")
	b.WriteString("**نتیجہ:** " + topic.Name + " مومن کی زندگی کا اہم ستون ہے جو دنیا و آخرت دونوں میں کامیابی کا ذریعہ بنتا ہے۔\n")
	return b.String()
}
