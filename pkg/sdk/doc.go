// Package ayat embeds the Quran question pipeline in a Go program.
//
// The client connects to the vector store (Valkey with the search module)
// and the relational text store (PostgreSQL), embeds each question, runs
// hybrid dense+sparse retrieval, joins canonical verse text and asks a chat
// model for a grounded Urdu explanation. Embedding, enrichment and generation
// failures degrade the answer instead of failing it.
//
//	client, err := ayat.New(ctx,
//	    ayat.WithValkey("localhost:6379", ""),
//	    ayat.WithPostgres("postgres://quran@localhost/quran?sslmode=disable"),
//	    ayat.WithEmbeddingGateway("http://localhost:8001", ""),
//	    ayat.WithGenerator("https://router.huggingface.co/v1", token, "moonshotai/Kimi-K2-Instruct-0905"),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	ans, err := client.Ask(ctx, "روزے کے فوائد", 5)
//	if errors.Is(err, ayat.ErrNotFound) { ... }
//	for _, v := range ans.Verses {
//	    fmt.Println(v.SurahID, v.AyahID, v.Arabic)
//	}
//	fmt.Println(ans.Explanation.Text)
package ayat
