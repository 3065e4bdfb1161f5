package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"pdv/internal/config"
	"pdv/internal/dto"
	"pdv/internal/infra"
	"pdv/internal/middleware"
	"pdv/internal/repository"
	"pdv/internal/service"
	"pdv/internal/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]int64 // 0 = reserved
	err  error            // returned by Reservar when set
}

func newMemIdempotency() *memIdempotency { return &memIdempotency{keys: map[string]int64{}} }

func (m *memIdempotency) Reservar(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, false, m.err
	}
	id, ok := m.keys[key]
	switch {
	case !ok:
		m.keys[key] = 0
		return 0, false, nil
	case id == 0:
		return 0, false, infra.ErrIdempotencyEmAndamento
	default:
		return id, true, nil
	}
}

func (m *memIdempotency) Concluir(_ context.Context, key string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = id
	return nil
}

func (m *memIdempotency) Liberar(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// ── Helpers ───────────────────────────────────────────────────────────────────

type testAPI struct {
	r     *gin.Engine
	st    *memstore.Store
	repos *repository.Repositories
	idems *memIdempotency
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New(repository.Tables...)
	repos := repository.New(st)
	authSvc := service.NewAuthService(repos.Usuarios, "segredo-teste", 30*time.Minute)
	vendaSvc, err := service.NewVendaService(st, service.VendaConfig{Modo: config.ModoSequencial, TentativasEstoque: 3}, nil, nil)
	require.NoError(t, err)

	authH := NewAuthHandler(authSvc)
	produtosH := NewProdutosHandler(service.NewProdutoService(repos.Produtos))
	idems := newMemIdempotency()
	vendasH := NewVendasHandler(vendaSvc, idems)
	caixaH := NewCaixaHandler(service.NewCaixaService(repos.Caixa))

	r := gin.New()
	r.POST("/cadastro", authH.Cadastrar)
	r.POST("/login", authH.Login)
	p := r.Group("", middleware.JWTAuth(authSvc))
	p.GET("/usuario/perfil", authH.Perfil)
	p.PUT("/usuario/senha", authH.AlterarSenha)
	p.POST("/produtos", produtosH.Criar)
	p.GET("/produtos", produtosH.Listar)
	p.GET("/produtos/:id", produtosH.ObterPorID)
	p.PUT("/produtos/:id", produtosH.Atualizar)
	p.DELETE("/produtos/:id", produtosH.Excluir)
	p.POST("/vendas", vendasH.CriarVenda)
	p.GET("/vendas", vendasH.ListarVendas)
	p.GET("/vendas/:id", vendasH.ObterVenda)
	p.POST("/caixa/movimentacao", caixaH.RegistrarMovimentacao)
	p.GET("/caixa/movimentacoes", caixaH.ListarMovimentacoes)
	p.GET("/caixa/saldo", caixaH.Saldo)

	api := &testAPI{r: r, st: st, repos: repos, idems: idems}

	w := api.do(http.MethodPost, "/cadastro", dto.CadastroRequest{Nome: "Ana", Email: "ana@pdv.com", Senha: "1234"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	api.token = api.login(t, "ana@pdv.com", "1234")
	return api
}

func (a *testAPI) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, email, senha string) string {
	t.Helper()
	form := url.Values{"username": {email}, "password": {senha}}
	req, _ := http.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (a *testAPI) criarProduto(t *testing.T, estoque int) int64 {
	t.Helper()
	w := a.do(http.MethodPost, "/produtos", dto.ProdutoRequest{
		Nome: "Camiseta", Preco: decimal.RequireFromString("5.00"), QuantidadeEstoque: estoque,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ProdutoCriadoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, msgProdutoCriado, resp.Mensagem)
	return resp.Produto.ID
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestLogin_JSONECredenciaisErradas(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/login", dto.LoginRequest{Username: "ana@pdv.com", Password: "1234"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/login", dto.LoginRequest{Username: "ana@pdv.com", Password: "xx"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email ou senha incorretos", detail(t, w))
}

func TestCadastro_Validacao(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/cadastro", map[string]string{"nome": "X", "email": "nao-email", "senha": "1234"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/cadastro", dto.CadastroRequest{Nome: "Ana", Email: "ana@pdv.com", Senha: "1234"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRotaProtegida_SemToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/produtos", nil, nil).Code)
}

func TestPerfilEAlterarSenha(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/usuario/perfil", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var perfil dto.PerfilResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perfil))
	assert.Equal(t, "ana@pdv.com", perfil.Email)
	assert.NotContains(t, w.Body.String(), "senha")

	w = api.do(http.MethodPut, "/usuario/senha", dto.AlterarSenhaRequest{SenhaAtual: "errada", NovaSenha: "nova1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Senha atual incorreta", detail(t, w))

	w = api.do(http.MethodPut, "/usuario/senha", dto.AlterarSenhaRequest{SenhaAtual: "1234", NovaSenha: "nova1"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgSenhaAlterada)
}

// ── Produtos ──────────────────────────────────────────────────────────────────

func TestProdutos_CRUD(t *testing.T) {
	api := newTestAPI(t)
	id := api.criarProduto(t, 10)

	w := api.do(http.MethodGet, "/produtos/1", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPut, "/produtos/1", dto.ProdutoRequest{Nome: "Calça", Preco: decimal.NewFromInt(90), QuantidadeEstoque: 3}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgProdutoAtualizado)

	w = api.do(http.MethodGet, "/produtos", nil, nil)
	var list []dto.ProdutoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "Calça", list[0].Nome)

	w = api.do(http.MethodDelete, "/produtos/1", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgProdutoDeletado)

	w = api.do(http.MethodGet, "/produtos/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Produto não encontrado", detail(t, w))
}

func TestProdutos_Validacao(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/produtos", map[string]any{"nome": "X", "preco": -1, "quantidadeEstoque": 1}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodGet, "/produtos/abc", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/produtos/9", nil, nil).Code)
}

// ── Vendas ────────────────────────────────────────────────────────────────────

func vendaBody(produtoID int64, itens ...[2]string) map[string]any {
	lista := make([]map[string]any, 0, len(itens))
	for _, it := range itens {
		lista = append(lista, map[string]any{"produtoId": produtoID, "quantidade": json.Number(it[0]), "precoUnitario": json.Number(it[1])})
	}
	return map[string]any{"formaPagamento": "dinheiro", "itens": lista}
}

func TestCriarVenda_FluxoCompleto(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 10)

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"3", "5.00"}, [2]string{"4", "5.00"}), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CriarVendaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Venda registrada com sucesso", resp.Mensagem)

	w = api.do(http.MethodGet, "/vendas/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var det dto.VendaDetalheResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &det))
	assert.Len(t, det.Itens, 2)
	assert.True(t, det.Total.Equal(decimal.NewFromInt(35)))

	w = api.do(http.MethodGet, "/produtos/1", nil, nil)
	assert.Contains(t, w.Body.String(), `"quantidadeEstoque":3`)

	w = api.do(http.MethodGet, "/caixa/saldo", nil, nil)
	var saldo dto.SaldoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saldo))
	assert.True(t, saldo.Saldo.Equal(decimal.NewFromInt(35)))
}

func TestCriarVenda_EstoqueInsuficiente(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 2)

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"5", "1.00"}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Estoque insuficiente para o produto 1", detail(t, w))
}

func TestCriarVenda_ListaVaziaEProdutoInexistente(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/vendas", map[string]any{"itens": []any{}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/vendas", vendaBody(77, [2]string{"1", "1.00"}), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCriarVenda_IdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 10)
	h := map[string]string{IdempotencyKeyHeader: "caixa1-0001"}

	w1 := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"2", "1.00"}), h)
	w2 := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"2", "1.00"}), h)
	require.Equal(t, http.StatusCreated, w1.Code)
	require.Equal(t, http.StatusCreated, w2.Code)
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())

	w := api.do(http.MethodGet, "/produtos/1", nil, nil)
	assert.Contains(t, w.Body.String(), `"quantidadeEstoque":8`)

	// without the header every call is a new sale
	api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"2", "1.00"}), nil)
	api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"2", "1.00"}), nil)
	w = api.do(http.MethodGet, "/vendas", nil, nil)
	var vendas []dto.VendaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vendas))
	assert.Len(t, vendas, 3)
}

func TestCriarVenda_IdempotencyKeyLiberadaAposFalha(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 1)
	h := map[string]string{IdempotencyKeyHeader: "k"}

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"2", "1.00"}), h)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"1", "1.00"}), h)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCriarVenda_IdempotencyKeySemRedis(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 10)
	api.idems.err = errors.New("dial tcp: connection refused")

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"1", "1.00"}), map[string]string{IdempotencyKeyHeader: "k"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, msgIdempotenciaIndisponivel, detail(t, w))
	assert.Empty(t, api.st.Rows(repository.TabelaVenda))

	// a concurrent duplicate is still a conflict
	api.idems.err = infra.ErrIdempotencyEmAndamento
	w = api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"1", "1.00"}), map[string]string{IdempotencyKeyHeader: "k"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// without the header the sale does not depend on redis
	w = api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"1", "1.00"}), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCriarVenda_FracaoDeCentavo(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 10)

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"3", "0.105"}), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "centavos")
	assert.Empty(t, api.st.Rows(repository.TabelaVenda))

	w = api.do(http.MethodPost, "/caixa/movimentacao", map[string]any{"tipo": "entrada", "valor": json.Number("1.001"), "descricao": "x"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestObterVenda_Inexistente(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/vendas/5", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Venda não encontrada", detail(t, w))
}

func TestCriarVenda_FalhaDoStore(t *testing.T) {
	api := newTestAPI(t)
	p := api.criarProduto(t, 10)
	api.st.FailOn("insert", repository.TabelaVenda, memstore.ErrFault)

	w := api.do(http.MethodPost, "/vendas", vendaBody(p, [2]string{"1", "1.00"}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "store")
}

// ── Caixa ─────────────────────────────────────────────────────────────────────

func TestCaixa(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/caixa/movimentacao", map[string]any{"tipo": "entrada", "valor": 50, "descricao": "Abertura"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), msgMovimentacaoRegistrada)
	w = api.do(http.MethodPost, "/caixa/movimentacao", map[string]any{"tipo": "saida", "valor": 20, "descricao": "Luz", "categoria": "contas"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/caixa/movimentacao", map[string]any{"tipo": "estorno", "valor": 1, "descricao": "x"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, "/caixa/movimentacoes?tipo=saida", nil, nil)
	var movs []dto.MovimentacaoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movs))
	require.Len(t, movs, 1)
	assert.Equal(t, "Luz", movs[0].Descricao)

	w = api.do(http.MethodGet, "/caixa/movimentacoes?tipo=outro", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, "/caixa/saldo", nil, nil)
	var saldo dto.SaldoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saldo))
	assert.True(t, saldo.Saldo.Equal(decimal.NewFromInt(30)))
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name   string
		store  Pinger
		status int
		body   string
	}{
		{"sem store remoto", nil, http.StatusOK, `{"ok":true,"store":"disabled","redis":"disabled"}`},
		{"store ok", fakePinger{}, http.StatusOK, `{"ok":true,"store":"connected","redis":"disabled"}`},
		{"store fora", fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable, `{"ok":false,"store":"error","redis":"disabled"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health(tc.store, nil))
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
