package api

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"vitrina/internal/catalog"

	"github.com/oklog/ulid/v2"
)

// Gateway — узкий интерфейс хранилища документов. Любой document store
// подойдёт; nil-шлюз означает чисто in-memory режим.
type Gateway interface {
	GetTemplate(ctx context.Context, id string) (*catalog.Template, error)
	UpsertTemplate(ctx context.Context, t *catalog.Template) error
	DeleteTemplate(ctx context.Context, id string) (bool, error)
	GetProduct(ctx context.Context, sku string) (*catalog.Product, error)
	UpsertProduct(ctx context.Context, p *catalog.Product) error
	DeleteProduct(ctx context.Context, sku string) (bool, error)
	ListTemplates(ctx context.Context) ([]*catalog.Template, error)
	ListProducts(ctx context.Context) ([]*catalog.Product, error)
	Ping(ctx context.Context) error
}

// Registry держит шаблоны и продукты в памяти и владеет инвариантами
// жизненного цикла: единственный default-шаблон, защита его удаления,
// клонирование со свежими id. Все мутации — под одним write-lock.
// Наружу и в шлюз уходят только снапшоты, снятые внутри критической
// секции: живой объект никогда не сериализуется вне лока.
type Registry struct {
	mu        sync.RWMutex
	templates []*catalog.Template
	products  []*catalog.Product
	gw        Gateway
	entropy   io.Reader
}

func NewRegistry(gw Gateway) *Registry {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Registry{
		gw:      gw,
		entropy: ulid.Monotonic(src, 0),
	}
}

// newIDLocked — вызывать только под mu: монотонный reader не потокобезопасен.
func (r *Registry) newIDLocked() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy).String()
}

// NewID выдаёт свежий ULID.
func (r *Registry) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newIDLocked()
}

// Load наполняет реестр из шлюза при старте.
func (r *Registry) Load(ctx context.Context) error {
	if r.gw == nil {
		return nil
	}
	tpls, err := r.gw.ListTemplates(ctx)
	if err != nil {
		return err
	}
	prods, err := r.gw.ListProducts(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.templates = tpls
	r.products = prods
	r.mu.Unlock()
	return nil
}

func (r *Registry) Ping(ctx context.Context) error {
	if r.gw == nil {
		return nil
	}
	return r.gw.Ping(ctx)
}

// ===== view templates =====

func (r *Registry) Templates() []*catalog.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*catalog.Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.Snapshot())
	}
	return out
}

func (r *Registry) Template(id string) (*catalog.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templateLocked(id)
	if !ok {
		return nil, false
	}
	return t.Snapshot(), true
}

func (r *Registry) templateLocked(id string) (*catalog.Template, bool) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// assignIDsLocked проставляет id везде, где клиент их не прислал.
func (r *Registry) assignIDsLocked(t *catalog.Template) {
	if t.ID == "" {
		t.ID = r.newIDLocked()
	}
	for _, s := range t.Sections {
		if s.ID == "" {
			s.ID = r.newIDLocked()
		}
		for _, a := range s.Attributes {
			if a.ID == "" {
				a.ID = r.newIDLocked()
			}
		}
	}
}

// enforceSingleDefaultLocked снимает default-флаг с остальных шаблонов.
// Возвращает задетые шаблоны — их надо дописать в шлюз.
func (r *Registry) enforceSingleDefaultLocked(keep *catalog.Template) []*catalog.Template {
	if !keep.IsDefault {
		return nil
	}
	var touched []*catalog.Template
	for _, t := range r.templates {
		if t.ID != keep.ID && t.IsDefault {
			t.IsDefault = false
			touched = append(touched, t)
		}
	}
	return touched
}

func snapshotTemplates(tpls []*catalog.Template) []*catalog.Template {
	out := make([]*catalog.Template, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, t.Snapshot())
	}
	return out
}

// AddTemplate регистрирует шаблон и возвращает его снапшот. Единственность
// default-флага обеспечивается на записи, а не только на удалении.
func (r *Registry) AddTemplate(ctx context.Context, t *catalog.Template) (*catalog.Template, error) {
	t.Normalize()
	r.mu.Lock()
	r.assignIDsLocked(t)
	touched := r.enforceSingleDefaultLocked(t)
	r.templates = append(r.templates, t)
	snaps := snapshotTemplates(append(touched, t))
	r.mu.Unlock()

	if err := r.persistTemplates(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps[len(snaps)-1], nil
}

// ReplaceTemplate подменяет существующий шаблон новым документом (PUT).
func (r *Registry) ReplaceTemplate(ctx context.Context, t *catalog.Template) (*catalog.Template, error) {
	t.Normalize()
	r.mu.Lock()
	old, ok := r.templateLocked(t.ID)
	if !ok {
		r.mu.Unlock()
		return nil, &catalog.NotFoundError{Kind: "view template", ID: t.ID}
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.assignIDsLocked(t)
	touched := r.enforceSingleDefaultLocked(t)
	for i, cur := range r.templates {
		if cur.ID == t.ID {
			r.templates[i] = t
			break
		}
	}
	snaps := snapshotTemplates(append(touched, t))
	r.mu.Unlock()

	if err := r.persistTemplates(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps[len(snaps)-1], nil
}

// MutateTemplate выполняет структурную правку под общим локом реестра
// и дописывает результат в шлюз. fn не должна блокироваться.
// Возвращается снапшот — живой объект наружу не отдаём.
func (r *Registry) MutateTemplate(ctx context.Context, id string, fn func(*catalog.Template) error) (*catalog.Template, error) {
	r.mu.Lock()
	t, ok := r.templateLocked(id)
	if !ok {
		r.mu.Unlock()
		return nil, &catalog.NotFoundError{Kind: "view template", ID: id}
	}
	if err := fn(t); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()
	snap := t.Snapshot()
	r.mu.Unlock()

	if err := r.persistTemplates(ctx, []*catalog.Template{snap}); err != nil {
		return nil, err
	}
	return snap, nil
}

// RemoveTemplate удаляет шаблон; default-шаблон удалить нельзя.
func (r *Registry) RemoveTemplate(ctx context.Context, id string) error {
	r.mu.Lock()
	t, ok := r.templateLocked(id)
	if !ok {
		r.mu.Unlock()
		return &catalog.NotFoundError{Kind: "view template", ID: id}
	}
	if t.IsDefault {
		r.mu.Unlock()
		return &catalog.DefaultProtectedError{ID: id}
	}
	out := r.templates[:0]
	for _, cur := range r.templates {
		if cur.ID != id {
			out = append(out, cur)
		}
	}
	r.templates = out
	r.mu.Unlock()

	if r.gw != nil {
		if _, err := r.gw.DeleteTemplate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CreateFromTemplate клонирует источник со свежими ULID вместо
// суффиксов от timestamp — коллизии при быстрых повторных клонах исключены.
func (r *Registry) CreateFromTemplate(ctx context.Context, sourceID, name, description string) (*catalog.Template, error) {
	r.mu.Lock()
	src, ok := r.templateLocked(sourceID)
	if !ok {
		r.mu.Unlock()
		return nil, &catalog.NotFoundError{Kind: "view template", ID: sourceID}
	}
	clone := src.Copy(r.newIDLocked(), name, description, r.newIDLocked)
	r.templates = append(r.templates, clone)
	snap := clone.Snapshot()
	r.mu.Unlock()

	if err := r.persistTemplates(ctx, []*catalog.Template{snap}); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Registry) persistTemplates(ctx context.Context, tpls []*catalog.Template) error {
	if r.gw == nil {
		return nil
	}
	for _, t := range tpls {
		if err := r.gw.UpsertTemplate(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// ===== products =====

func (r *Registry) Products() []*catalog.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Snapshot())
	}
	return out
}

// Product — точное совпадение по производному SKU, первый найденный.
func (r *Registry) Product(sku string) (*catalog.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, _, ok := r.productLocked(sku)
	if !ok {
		return nil, false
	}
	return p.Snapshot(), true
}

func (r *Registry) productLocked(sku string) (*catalog.Product, int, bool) {
	if sku == "" {
		return nil, 0, false
	}
	for i, p := range r.products {
		if p.SKU == sku {
			return p, i, true
		}
	}
	return nil, 0, false
}

// AddProduct валидирует структуру против шаблона (если задан) и регистрирует
// запись. Повторный SKU — upsert, как в хранилище с уникальным ключом.
func (r *Registry) AddProduct(ctx context.Context, structure []catalog.RecordSection, templateID string) (*catalog.Product, error) {
	r.mu.Lock()
	var tpl *catalog.Template
	if templateID != "" {
		var ok bool
		tpl, ok = r.templateLocked(templateID)
		if !ok {
			r.mu.Unlock()
			return nil, &catalog.NotFoundError{Kind: "view template", ID: templateID}
		}
	}
	if err := catalog.ValidateStructure(structure, tpl); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	p := catalog.NewProduct(structure)
	if _, i, ok := r.productLocked(p.SKU); ok {
		r.products[i] = p
	} else {
		r.products = append(r.products, p)
	}
	snap := p.Snapshot()
	r.mu.Unlock()

	if err := r.persistProduct(ctx, snap, ""); err != nil {
		return nil, err
	}
	return snap, nil
}

// UpdateProduct — атомарная сверка с шаблоном и полная замена structure.
// При ошибке валидации запись остаётся нетронутой.
func (r *Registry) UpdateProduct(ctx context.Context, sku string, structure []catalog.RecordSection, templateID string) (*catalog.Product, error) {
	r.mu.Lock()
	p, _, ok := r.productLocked(sku)
	if !ok {
		r.mu.Unlock()
		return nil, &catalog.NotFoundError{Kind: "product", ID: sku}
	}
	var tpl *catalog.Template
	if templateID != "" {
		tpl, ok = r.templateLocked(templateID)
		if !ok {
			r.mu.Unlock()
			return nil, &catalog.NotFoundError{Kind: "view template", ID: templateID}
		}
	}
	if err := p.Update(structure, tpl); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	oldSKU := ""
	if p.SKU != sku {
		oldSKU = sku
	}
	snap := p.Snapshot()
	r.mu.Unlock()

	if err := r.persistProduct(ctx, snap, oldSKU); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Registry) RemoveProduct(ctx context.Context, sku string) error {
	r.mu.Lock()
	_, i, ok := r.productLocked(sku)
	if !ok {
		r.mu.Unlock()
		return &catalog.NotFoundError{Kind: "product", ID: sku}
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	r.mu.Unlock()

	if r.gw != nil {
		if _, err := r.gw.DeleteProduct(ctx, sku); err != nil {
			return err
		}
	}
	return nil
}

// persistProduct дописывает запись в шлюз; oldSKU непустой — ключ сменился,
// старый документ надо убрать. Запись без SKU в шлюз не попадает.
func (r *Registry) persistProduct(ctx context.Context, p *catalog.Product, oldSKU string) error {
	if r.gw == nil {
		return nil
	}
	if oldSKU != "" {
		if _, err := r.gw.DeleteProduct(ctx, oldSKU); err != nil {
			return err
		}
	}
	if p.SKU == "" {
		return nil
	}
	return r.gw.UpsertProduct(ctx, p)
}
