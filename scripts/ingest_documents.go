package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
)

type manifest struct {
	Rubrics []rubricSource      `yaml:"rubrics"`
	Jobs    []models.JobPosting `yaml:"jobs"`
}

type rubricSource struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

func main() {
	log.Println("🚀 Starting knowledge base ingestion...")

	cfg := config.Load()
	ctx := context.Background()

	manifestPath := os.Getenv("INGEST_MANIFEST")
	if manifestPath == "" {
		manifestPath = "./reference_docs/manifest.yaml"
	}

	m, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatalf("❌ Failed to load manifest: %v", err)
	}

	geminiService, err := services.NewGeminiService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.EmbeddingModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	knowledgeBase, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, nil)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := knowledgeBase.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	parser := services.NewResumeParser(config.DefaultCatalog(), 0)
	chunker := services.NewTextChunker()

	successCount := 0
	failCount := 0

	for _, rubric := range m.Rubrics {
		log.Printf("\n📄 Processing rubric: %s", rubric.Name)
		log.Printf("   Path: %s", rubric.Path)

		if _, err := os.Stat(rubric.Path); os.IsNotExist(err) {
			log.Printf("   ⚠️  File not found, skipping...")
			failCount++
			continue
		}

		text, err := parser.ExtractFile(rubric.Path)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		log.Printf("   ✂️  %d characters, %d chunks", len(text), len(chunks))

		stored := 0
		for i, chunk := range chunks {
			doc := services.KnowledgeDocument{
				DocID:    fmt.Sprintf("%s_chunk_%d", slug(rubric.Name), i),
				DocType:  services.DocTypeRubric,
				Text:     chunk,
				Metadata: map[string]string{"source": rubric.Name},
			}
			if err := store(ctx, geminiService, knowledgeBase, doc); err != nil {
				log.Printf("   ❌ Chunk %d: %v", i+1, err)
				continue
			}
			stored++
		}

		log.Printf("   ✅ Stored %d/%d chunks", stored, len(chunks))
		successCount++
	}

	for i, job := range m.Jobs {
		if strings.TrimSpace(job.Title) == "" {
			log.Printf("⚠️  Job %d has no title, skipping...", i+1)
			failCount++
			continue
		}

		if job.ID == "" {
			job.ID = fmt.Sprintf("job_%s_%s", slug(job.Company), slug(job.Title))
		}

		doc := services.KnowledgeDocument{
			DocID:   job.ID,
			DocType: services.DocTypeJobPosting,
			Text:    strings.TrimSpace(fmt.Sprintf("%s at %s. %s", job.Title, job.Company, job.Description)),
			Metadata: map[string]string{
				"id":           job.ID,
				"title":        job.Title,
				"company":      job.Company,
				"location":     job.Location,
				"salary_range": job.SalaryRange,
				"apply_url":    job.ApplyURL,
				"description":  job.Description,
			},
		}
		if err := store(ctx, geminiService, knowledgeBase, doc); err != nil {
			log.Printf("❌ Job %q: %v", job.Title, err)
			failCount++
			continue
		}
		log.Printf("💼 Stored job posting: %s (%s)", job.Title, job.Company)
		successCount++
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d documents", successCount)
	log.Printf("   ❌ Failed: %d documents", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All documents ingested successfully!")
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// store replaces any earlier copy of doc so that re-running the script is safe.
func store(ctx context.Context, embedder services.Embedder, kb services.KnowledgeBase, doc services.KnowledgeDocument) error {
	embedding, err := embedder.GenerateEmbedding(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	if err := kb.DeleteDocument(ctx, doc.DocID); err != nil {
		return fmt.Errorf("delete previous copy: %w", err)
	}

	return kb.UpsertDocument(ctx, doc, embedding)
}

func slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "_")
}
