package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/internal/domain/taxonomy"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

type taxonomyFile struct {
	Categories []categorySeed `yaml:"categories"`
}

type categorySeed struct {
	Name     string         `yaml:"name"`
	Sort     *int           `yaml:"sort"`
	Icon     *string        `yaml:"icon"`
	Products []productSeed  `yaml:"products"`
	Children []categorySeed `yaml:"children"`
}

type productSeed struct {
	SKU   string `yaml:"sku"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type seedResult struct {
	Created  int
	Reused   int
	Products int
}

func parseTaxonomy(r io.Reader) (*taxonomyFile, error) {
	var tax taxonomyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tax); err != nil {
		return nil, fmt.Errorf("decodificar YAML: %w", err)
	}
	if len(tax.Categories) == 0 {
		return nil, errors.New("la taxonomía no tiene categorías")
	}
	return &tax, nil
}

// seeder crea la taxonomía en profundidad; una categoría que ya existe entre sus
// hermanos se reutiliza, de modo que correr el seed dos veces no duplica nada.
type seeder struct {
	uc       *usecase.CategoryUseCase
	products repository.ProductRepository
	log      *logger.Logger
}

func (s *seeder) apply(ctx context.Context, tax *taxonomyFile) (seedResult, error) {
	var res seedResult
	for _, c := range tax.Categories {
		if err := s.category(ctx, c, nil, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *seeder) category(ctx context.Context, in categorySeed, parentID *string, res *seedResult) error {
	req := dto.CreateCategoryRequest{Name: in.Name, ParentID: parentID}
	if in.Sort != nil || in.Icon != nil {
		req.Meta = &dto.MetaRequest{Sort: in.Sort, Icon: in.Icon}
	}

	var id string
	out, err := s.uc.Create(ctx, req)
	switch {
	case err == nil:
		id = out.ID
		res.Created++
	case errors.Is(err, domain.ErrDuplicateSibling):
		existing, ferr := s.findSibling(ctx, parentID, in.Name)
		if ferr != nil {
			return ferr
		}
		id = existing
		res.Reused++
		s.log.Debug().Str("name", in.Name).Str("category_id", id).Msg("categoría existente reutilizada")
	default:
		return fmt.Errorf("categoría %q: %w", in.Name, err)
	}

	for _, p := range in.Products {
		if err := s.product(ctx, p, id, parentID); err != nil {
			s.log.Warn().Err(err).Str("sku", p.SKU).Msg("producto omitido")
			continue
		}
		res.Products++
	}
	for _, child := range in.Children {
		if err := s.category(ctx, child, &id, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) findSibling(ctx context.Context, parentID *string, name string) (string, error) {
	var siblings []dto.CategoryFlatItem
	if parentID != nil {
		out, err := s.uc.ListChildren(ctx, *parentID)
		if err != nil {
			return "", err
		}
		siblings = out.Categories
	} else {
		out, err := s.uc.ListFlat(ctx, false)
		if err != nil {
			return "", err
		}
		for _, c := range out.Categories {
			if c.ParentID == nil {
				siblings = append(siblings, c)
			}
		}
	}
	for _, c := range siblings {
		if taxonomy.NameKey(c.Name) == taxonomy.NameKey(name) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("categoría %q duplicada pero no encontrada entre sus hermanas", name)
}

// product cuelga el producto de la categoría; bajo una subcategoría referencia a ambas.
func (s *seeder) product(ctx context.Context, in productSeed, categoryID string, parentID *string) error {
	price := decimal.Zero
	if in.Price != "" {
		p, err := decimal.NewFromString(in.Price)
		if err != nil {
			return fmt.Errorf("precio inválido %q: %w", in.Price, err)
		}
		price = p
	}
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       in.SKU,
		Name:      in.Name,
		Price:     price,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parentID == nil {
		p.CategoryID = &categoryID
	} else {
		cat := *parentID
		p.CategoryID = &cat
		p.SubcategoryID = &categoryID
	}
	return s.products.Create(ctx, p)
}
