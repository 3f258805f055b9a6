package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/greenscanner/backend/internal/domain"
)

// Open Food Facts search parameters used by the pipeline
const (
	popularitySort       = "popularity"
	alternativesPageSize = 24
	imageMatchPageSize   = 12
	topHitPageSize       = 1
	webSearchLimit       = 3
	unknownProductName   = "Unknown product"
	estimatedPlaceholder = "Estimated"
	defaultMinAlternates = 3
)

// productFields is the projection requested for records that may be ranked
var productFields = []string{
	"product_name", "brands", "ecoscore_grade", "categories_tags", "packaging_tags",
	"labels_tags", "nutriscore_grade", "ingredients_text", "image_url", "image_front_url",
}

// imageFields is the projection requested when only hunting for a picture
var imageFields = []string{"product_name", "brands", "image_url", "image_front_url"}

// SustainabilityServiceConfig holds configuration for the sustainability service
type SustainabilityServiceConfig struct {
	MaxAlternatives    int
	MinAlternatives    int
	IncludeDiagnostics bool
}

// SustainabilityService resolves a product query into a product record and
// a ranked list of more sustainable alternatives
type SustainabilityService struct {
	products           domain.ProductDatabase
	web                domain.WebSearcher
	estimator          domain.Estimator
	logger             *zap.Logger
	maxAlternatives    int
	minAlternatives    int
	includeDiagnostics bool
}

// NewSustainabilityService creates a new sustainability service with dependencies.
// web and estimator may be nil; the pipeline then runs without those fallbacks.
func NewSustainabilityService(
	products domain.ProductDatabase,
	web domain.WebSearcher,
	estimator domain.Estimator,
	logger *zap.Logger,
	config SustainabilityServiceConfig,
) *SustainabilityService {
	if web == nil {
		web = noWebSearch{}
	}
	if estimator == nil {
		estimator = noEstimator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	maxAlternatives := config.MaxAlternatives
	if maxAlternatives <= 0 || maxAlternatives > DefaultMaxAlternatives {
		maxAlternatives = DefaultMaxAlternatives
	}
	minAlternatives := config.MinAlternatives
	if minAlternatives <= 0 {
		minAlternatives = defaultMinAlternates
	}

	return &SustainabilityService{
		products:           products,
		web:                web,
		estimator:          estimator,
		logger:             logger.Named("resolve"),
		maxAlternatives:    maxAlternatives,
		minAlternatives:    minAlternatives,
		includeDiagnostics: config.IncludeDiagnostics,
	}
}

// Lookup validates a boundary request and resolves it
func (s *SustainabilityService) Lookup(ctx context.Context, request *domain.LookupRequest) (*domain.SustainableResult, error) {
	if request == nil ||
		(strings.TrimSpace(request.ProductQuery) == "" && strings.TrimSpace(request.ImageBase64) == "") {
		return nil, domain.ErrInvalidRequest
	}
	return s.Resolve(ctx, request.ProductQuery, request.ImageBase64)
}

// Resolve runs the full lookup pipeline.
// Flow: identify image -> primary search -> estimate missing fields ->
// hydrate image || find alternatives -> render.
// Upstream failures never surface as errors; they select a fallback path.
func (s *SustainabilityService) Resolve(ctx context.Context, query, imageData string) (*domain.SustainableResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := s.resolveInput(ctx, query, imageData)
	trace := in.trace
	if in.query == "" {
		return s.estimateOnly(ctx, imageData, trace), nil
	}

	log := s.logger.With(zap.String("query", in.query))

	primary, err := s.products.Search(ctx, domain.ProductQuery{Terms: in.query, Mode: domain.ModeSimple})
	if err != nil {
		status := domain.UpstreamStatusLabel(err)
		log.Warn("primary product search failed", zap.Error(err))
		return s.databaseUnavailable(ctx, in.query, imageData, trace.WithPrimary(domain.PrimaryFailed, status), status), nil
	}
	if len(primary) == 0 {
		log.Info("no exact match, running relaxed search")
		return s.noExactMatch(ctx, in.query, imageData, trace.WithPrimary(domain.PrimaryEmpty, "")), nil
	}
	trace = trace.WithPrimary(domain.PrimaryMatch, "")

	record := primary[0]
	product := projectPrimary(record, in.query)
	dbName := product.Name
	if in.identifiedName != "" {
		product.Name = in.identifiedName
	}
	if in.identifiedBrand != "" && product.Brand == domain.Unknown {
		product.Brand = in.identifiedBrand
	}

	if isMissingDetails(product) {
		log.Debug("matched record incomplete, estimating", zap.String("product", dbName))
		estimate, webUsed := s.estimateWithFallback(ctx, dbName, imageData)
		product = mergeEstimate(product, estimate)
		trace = trace.WithEstimation(webUsed)
	}

	if !isResolvedScore(product.Ecoscore) || !isResolvedScore(product.Nutriscore) {
		trace = trace.WithScoresDefaulted()
	}
	product.Ecoscore = NormalizeScore(product.Ecoscore)
	product.Nutriscore = NormalizeScore(product.Nutriscore)

	categoryTag, _ := record.CategoriesTags.Last()

	// Hydration only writes the image and the alternatives search only reads
	// name and scores, so the two run side by side on a copy of the product.
	var (
		img  imageOutcome
		alts alternativesOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	if imageData == "" {
		g.Go(func() error {
			img = s.hydrateImage(gctx, product, in.query)
			return nil
		})
	} else {
		img = imageOutcome{path: domain.ImagePathUserImage}
	}
	g.Go(func() error {
		alts = s.lookupAlternatives(gctx, product, categoryTag, in.query)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if img.imageURL != "" {
		product.ImageURL = img.imageURL
	}
	trace = trace.WithImage(img.path, img.query, img.topImage, img.matchedImage)
	trace = trace.WithAlternatives(alts.source, alts.category, alts.supplementary)

	if alts.err != nil {
		status := domain.UpstreamStatusLabel(alts.err)
		log.Warn("alternatives search failed", zap.Error(alts.err))
		return &domain.SustainableResult{
			Text:         RenderAlternativesFailure(product, status),
			Product:      product,
			Alternatives: []domain.ProductDetails{},
			Trace:        trace.WithAlternativesFailure(status),
		}, nil
	}

	log.Info("resolved product",
		zap.String("product", product.Name),
		zap.String("ecoscore", product.Ecoscore),
		zap.Int("alternatives", len(alts.list)))

	return &domain.SustainableResult{
		Text:         RenderNarrative(product, alts.list, trace, s.includeDiagnostics),
		Product:      product,
		Alternatives: alts.list,
		Trace:        trace,
	}, nil
}

// resolvedInput is the outcome of the input resolution stage
type resolvedInput struct {
	query           string
	identifiedName  string
	identifiedBrand string
	trace           domain.Trace
}

// resolveInput picks the effective query, asking the estimator to read the
// image when no text was given. The brand is prepended as-is, so a name that
// already starts with the brand repeats it.
func (s *SustainabilityService) resolveInput(ctx context.Context, query, imageData string) resolvedInput {
	trimmed := strings.TrimSpace(query)
	if trimmed != "" {
		return resolvedInput{query: trimmed, trace: domain.Trace{}.WithQuery(trimmed, domain.QuerySourceText)}
	}
	if imageData == "" {
		return resolvedInput{trace: domain.Trace{}.WithQuery("", domain.QuerySourceNone)}
	}

	var rawName, rawBrand string
	if id := s.estimator.IdentifyFromImage(ctx, imageData); id != nil {
		rawName, rawBrand = id.Name, id.Brand
	}
	name := NormalizeField(rawName, domain.Unknown)
	brand := NormalizeField(rawBrand, "")
	if name == domain.Unknown {
		s.logger.Info("could not identify product from image")
		return resolvedInput{trace: domain.Trace{}.WithQuery("", domain.QuerySourceNone)}
	}

	combined := strings.TrimSpace(brand + " " + name)
	s.logger.Info("identified product from image", zap.String("name", name), zap.String("brand", brand))
	return resolvedInput{
		query:           combined,
		identifiedName:  name,
		identifiedBrand: brand,
		trace: domain.Trace{}.
			WithQuery(combined, domain.QuerySourceImage).
			WithIdentification(name, brand),
	}
}

// estimateOnly is the terminal state when no product name could be established
func (s *SustainabilityService) estimateOnly(ctx context.Context, imageData string, trace domain.Trace) *domain.SustainableResult {
	estimate := s.estimator.Estimate(ctx, unknownProductName, nil, imageData)
	return &domain.SustainableResult{
		Text:         noProductDetectedText,
		Product:      estimatedProduct(estimate, domain.Unknown),
		Alternatives: []domain.ProductDetails{},
		Trace:        trace.WithEstimation(false),
	}
}

// databaseUnavailable is the terminal state when the primary search failed
func (s *SustainabilityService) databaseUnavailable(ctx context.Context, query, imageData string, trace domain.Trace, status string) *domain.SustainableResult {
	estimate, webUsed := s.estimateWithFallback(ctx, query, imageData)
	return &domain.SustainableResult{
		Text:         databaseUnreachableText(status),
		Product:      estimatedProduct(estimate, query),
		Alternatives: []domain.ProductDetails{},
		Trace:        trace.WithEstimation(webUsed),
	}
}

// noExactMatch is the terminal state when the primary search found nothing.
// The relaxed search and the estimation are independent and run together.
func (s *SustainabilityService) noExactMatch(ctx context.Context, query, imageData string, trace domain.Trace) *domain.SustainableResult {
	var (
		relaxed  []domain.RawProduct
		estimate *domain.EstimationResult
		webUsed  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		relaxed, err = s.products.Search(gctx, domain.ProductQuery{
			Terms:    query,
			Mode:     domain.ModeV2,
			SortBy:   popularitySort,
			PageSize: alternativesPageSize,
			Fields:   productFields,
		})
		if err != nil {
			s.logger.Warn("relaxed search failed", zap.String("query", query), zap.Error(err))
			relaxed = nil
		}
		return nil
	})
	g.Go(func() error {
		estimate, webUsed = s.estimateWithFallback(gctx, query, imageData)
		return nil
	})
	_ = g.Wait()

	alternatives := PickAlternatives(relaxed, unscoredEco, unscoredNutri, query, s.maxAlternatives)
	return &domain.SustainableResult{
		Text:         noExactMatchText(query),
		Product:      estimatedProduct(estimate, query),
		Alternatives: alternatives,
		Trace: trace.
			WithEstimation(webUsed).
			WithAlternatives(domain.AltSourceRelaxed, "", false),
	}
}

// estimateWithFallback asks the estimator once and, when it returns nothing
// usable, retries with web search snippets as extra evidence
func (s *SustainabilityService) estimateWithFallback(ctx context.Context, name, imageData string) (*domain.EstimationResult, bool) {
	estimate := s.estimator.Estimate(ctx, name, nil, imageData)
	if !estimate.IsEmpty() {
		return estimate, false
	}
	results := s.web.Search(ctx, name, webSearchLimit)
	s.logger.Debug("estimate empty, retrying with web results",
		zap.String("name", name), zap.Int("results", len(results)))
	return s.estimator.Estimate(ctx, name, results, imageData), true
}

// imageOutcome is the result of the image hydration stage
type imageOutcome struct {
	imageURL     string
	path         string
	query        string
	topImage     string
	matchedImage string
}

// hydrateImage looks for a product picture when the user sent none. Estimated
// products take the top search hit; authoritative ones without an image try
// progressively broader queries scored for relevance.
func (s *SustainabilityService) hydrateImage(ctx context.Context, product domain.ProductDetails, effectiveQuery string) imageOutcome {
	if product.EcoEstimated || product.NutriEstimated || product.DetailsEstimated {
		out := imageOutcome{path: domain.ImagePathTopHit, query: product.Name}
		hits, err := s.products.Search(ctx, domain.ProductQuery{
			Terms:    product.Name,
			Mode:     domain.ModeV2,
			PageSize: topHitPageSize,
			Fields:   imageFields,
		})
		if err != nil {
			s.logger.Debug("top image search failed", zap.Error(err))
			return out
		}
		if len(hits) > 0 {
			out.topImage = hits[0].Image()
		}
		if IsValidImageURL(out.topImage) {
			out.imageURL = out.topImage
		}
		return out
	}

	if IsValidImageURL(product.ImageURL) {
		return imageOutcome{path: domain.ImagePathDatabase}
	}

	out := imageOutcome{path: domain.ImagePathNone}
	for _, q := range imageQueries(product, effectiveQuery) {
		hits, err := s.products.Search(ctx, domain.ProductQuery{
			Terms:    q,
			Mode:     domain.ModeV2,
			PageSize: imageMatchPageSize,
			Fields:   imageFields,
		})
		if err != nil {
			s.logger.Debug("image search failed", zap.String("image_query", q), zap.Error(err))
			continue
		}
		image := PickImage(hits, q, product.Brand)
		if out.query == "" {
			out.query = q
			out.matchedImage = image
		}
		if IsValidImageURL(image) {
			out.imageURL = image
			out.path = domain.ImagePathMatched
			return out
		}
	}
	return out
}

// imageQueries lists the hydration queries from most to least specific
func imageQueries(product domain.ProductDetails, effectiveQuery string) []string {
	var queries []string
	if product.Brand != "" && product.Brand != domain.Unknown {
		queries = append(queries, product.Brand+" "+product.Name)
	}
	queries = append(queries, product.Name)
	if effectiveQuery != "" {
		for _, q := range queries {
			if q == effectiveQuery {
				return queries
			}
		}
		queries = append(queries, effectiveQuery)
	}
	return queries
}

// alternativesOutcome is the result of the alternatives lookup stage
type alternativesOutcome struct {
	list          []domain.ProductDetails
	source        string
	category      string
	supplementary bool
	err           error
}

// lookupAlternatives searches the product's most specific category (or the
// free-text query) and tops the list up with a free-text search when short
func (s *SustainabilityService) lookupAlternatives(ctx context.Context, product domain.ProductDetails, categoryTag, effectiveQuery string) alternativesOutcome {
	query := domain.ProductQuery{
		Mode:     domain.ModeV2,
		SortBy:   popularitySort,
		PageSize: alternativesPageSize,
		Fields:   productFields,
	}
	out := alternativesOutcome{source: domain.AltSourceText}
	if categoryTag != "" {
		query.CategoryTag = categoryTag
		out.source = domain.AltSourceCategory
		out.category = categoryTag
	} else {
		query.Terms = effectiveQuery
	}

	raw, err := s.products.Search(ctx, query)
	if err != nil {
		out.err = err
		return out
	}
	out.list = PickAlternatives(raw, product.Ecoscore, product.Nutriscore, product.Name, s.maxAlternatives)
	if len(out.list) >= s.minAlternatives {
		return out
	}

	extra, err := s.products.Search(ctx, domain.ProductQuery{
		Terms:    effectiveQuery,
		Mode:     domain.ModeV2,
		SortBy:   popularitySort,
		PageSize: alternativesPageSize,
		Fields:   productFields,
	})
	if err != nil {
		s.logger.Debug("supplementary alternatives search failed", zap.Error(err))
		return out
	}
	out.supplementary = true
	out.list = MergeAlternatives(
		out.list,
		PickAlternatives(extra, product.Ecoscore, product.Nutriscore, product.Name, s.maxAlternatives),
		s.maxAlternatives,
	)
	return out
}

// projectPrimary converts the matched record into ProductDetails without
// resolving scores; unresolved grades stay "?" or "Unknown"
func projectPrimary(p domain.RawProduct, fallbackName string) domain.ProductDetails {
	eco := unscoredEco
	if p.EcoscoreGrade.Present && p.EcoscoreGrade.Value != "" && p.EcoscoreGrade.Value != unscoredEco {
		eco = strings.ToUpper(p.EcoscoreGrade.Value)
	}
	nutri := unscoredNutri
	if p.NutriscoreGrade.Present {
		nutri = strings.ToUpper(p.NutriscoreGrade.Value)
	}

	return domain.ProductDetails{
		Name:        p.ProductName.Or(fallbackName),
		Brand:       primaryBrand(p.Brands),
		Categories:  FormatTags(p.CategoriesTags, domain.Unknown),
		Packaging:   FormatTags(p.PackagingTags, domain.Unknown),
		Labels:      FormatTags(p.LabelsTags, domain.Unknown),
		Ingredients: ingredientsText(p.IngredientsText),
		Ecoscore:    eco,
		Nutriscore:  nutri,
		ImageURL:    p.Image(),
	}
}

// isMissingDetails reports whether any descriptive field or grade is unresolved
func isMissingDetails(d domain.ProductDetails) bool {
	return d.Brand == domain.Unknown ||
		d.Categories == domain.Unknown ||
		d.Packaging == domain.Unknown ||
		d.Labels == domain.Unknown ||
		d.Ingredients == domain.Unknown ||
		IsUnknownScore(d.Ecoscore) ||
		IsUnknownScore(d.Nutriscore)
}

func isResolvedScore(s string) bool {
	_, ok := scoreRanks[s]
	return ok
}

// mergeEstimate fills the gaps of an authoritative record from an estimate.
// Descriptive fields are only written where the record says "Unknown".
// An unresolved grade takes the estimate (or "C"); a resolved grade takes
// the estimate only when it is not worse. Provenance flags are raised
// whenever the estimator offered a value, even one that was not used.
func mergeEstimate(p domain.ProductDetails, est *domain.EstimationResult) domain.ProductDetails {
	if est == nil {
		return p
	}

	p.Brand = fillUnknown(p.Brand, est.Brand)
	p.Categories = fillUnknown(p.Categories, est.Categories)
	p.Packaging = fillUnknown(p.Packaging, est.Packaging)
	p.Labels = fillUnknown(p.Labels, est.Labels)
	p.Ingredients = fillUnknown(p.Ingredients, est.Ingredients)

	p.Ecoscore, p.EcoEstimated = mergeScore(p.Ecoscore, est.Ecoscore)
	p.Nutriscore, p.NutriEstimated = mergeScore(p.Nutriscore, est.Nutriscore)

	if est.HasDetails() {
		p.DetailsEstimated = true
	}
	if !IsValidImageURL(p.ImageURL) && IsValidImageURL(est.ImageURL) {
		p.ImageURL = est.ImageURL
	}
	return p
}

func fillUnknown(current, offered string) string {
	if current != domain.Unknown {
		return current
	}
	return NormalizeField(offered, current)
}

// mergeScore returns the merged grade and whether it counts as estimated
func mergeScore(current, offered string) (string, bool) {
	if IsUnknownScore(current) {
		return NormalizeScore(offered), true
	}
	if NormalizeField(offered, "") == "" {
		return current, false
	}
	candidate := NormalizeScore(offered)
	if ScoreRank(candidate) <= ScoreRank(current) {
		return candidate, true
	}
	return current, true
}

// estimatedProduct builds a product purely from an estimate, which may be nil
func estimatedProduct(est *domain.EstimationResult, nameFallback string) domain.ProductDetails {
	if est == nil {
		est = &domain.EstimationResult{}
	}
	image := ""
	if IsValidImageURL(est.ImageURL) {
		image = est.ImageURL
	}
	return domain.ProductDetails{
		Name:             NormalizeField(est.Name, nameFallback),
		Brand:            NormalizeField(est.Brand, estimatedPlaceholder),
		Categories:       NormalizeField(est.Categories, estimatedPlaceholder),
		Packaging:        NormalizeField(est.Packaging, estimatedPlaceholder),
		Labels:           NormalizeField(est.Labels, estimatedPlaceholder),
		Ingredients:      NormalizeField(est.Ingredients, estimatedPlaceholder),
		Ecoscore:         NormalizeScore(est.Ecoscore),
		Nutriscore:       NormalizeScore(est.Nutriscore),
		ImageURL:         image,
		EcoEstimated:     true,
		NutriEstimated:   true,
		DetailsEstimated: true,
	}
}

type noWebSearch struct{}

func (noWebSearch) Search(context.Context, string, int) []domain.WebResult { return nil }

type noEstimator struct{}

func (noEstimator) IdentifyFromImage(context.Context, string) *domain.ImageIdentification {
	return nil
}

func (noEstimator) Estimate(context.Context, string, []domain.WebResult, string) *domain.EstimationResult {
	return nil
}
