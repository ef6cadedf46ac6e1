package catalog

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/storeledger/internal/http/respond"
	"github.com/MrJamesThe3rd/storeledger/internal/importer"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type Handler struct {
	svc       *ledger.Service
	importSvc *importer.Service
}

func NewHandler(svc *ledger.Service, importSvc *importer.Service) *Handler {
	return &Handler{svc: svc, importSvc: importSvc}
}

// ProductRoutes mounts under /products.
func (h *Handler) ProductRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Post("/import", h.importProducts)
	r.Get("/scan/{code}", h.scan)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Delete("/{id}", h.deleteProduct)
}

// CategoryRoutes mounts under /categories.
func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.listCategories)
	r.Post("/", h.addCategory)
	r.Patch("/{name}", h.renameCategory)
	r.Delete("/{name}", h.removeCategory)
}

// SettingsRoutes mounts under /settings.
func (h *Handler) SettingsRoutes(r chi.Router) {
	r.Get("/", h.getSettings)
	r.Put("/", h.updateSettings)
}

type productRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    *int            `json:"minStock,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (req productRequest) params(id string) ledger.ProductParams {
	return ledger.ProductParams{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Barcode:     req.Barcode,
		Description: req.Description,
	}
}

type productResponse struct {
	ledger.Product
	Threshold int  `json:"threshold"`
	LowStock  bool `json:"lowStock"`
}

func toResponse(p ledger.Product, settings ledger.Settings) productResponse {
	threshold := p.Threshold(settings)

	return productResponse{
		Product:   p,
		Threshold: threshold,
		LowStock:  p.Stock <= threshold,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Snapshot()
	category := r.URL.Query().Get("category")

	resp := make([]productResponse, 0, len(st.Products))
	for _, p := range st.Products {
		if category != "" && p.Category != category {
			continue
		}

		resp = append(resp, toResponse(p, st.Settings))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpsertProduct(r.Context(), req.params(""))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(*p, h.svc.Snapshot().Settings))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Product(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(*p, h.svc.Snapshot().Settings))
}

// updateProduct replaces the product. An unknown id is created under that id,
// matching the upsert semantics of the catalog.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpsertProduct(r.Context(), req.params(chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(*p, h.svc.Snapshot().Settings))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Resolve(chi.URLParam(r, "code"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(*p, h.svc.Snapshot().Settings))
}

type importResponse struct {
	Imported int               `json:"imported"`
	Products []productResponse `json:"products"`
}

func (h *Handler) importProducts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.Error(w, err)
		return
	}

	products, err := h.svc.ImportProducts(r.Context(), rows)
	if err != nil {
		respond.Error(w, err)
		return
	}

	settings := h.svc.Snapshot().Settings

	resp := importResponse{
		Imported: len(products),
		Products: make([]productResponse, 0, len(products)),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toResponse(p, settings))
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Snapshot().Categories)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) addCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.AddCategory(r.Context(), req.Name); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, h.svc.Snapshot().Categories)
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.RenameCategory(r.Context(), categoryParam(r), req.Name); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.Snapshot().Categories)
}

func (h *Handler) removeCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCategory(r.Context(), categoryParam(r)); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// categoryParam decodes the {name} segment. chi leaves it escaped when the
// name holds a reserved character such as '/'.
func categoryParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")

	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}

	return name
}

func (h *Handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Snapshot().Settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req ledger.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateSettings(r.Context(), req); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.Snapshot().Settings)
}
