package views

import "html/template"

var drawerTmpl = template.Must(template.New("drawer").Funcs(funcs).Parse(`<aside class="cart-drawer">
  <h2>Your Bag ({{.Count}})</h2>
  {{if .Items}}
  <ul>
    {{range .Items}}
    <li class="cart-drawer__item">
      <img src="{{.Image}}" alt="{{.Name}}">
      <span>{{.Name}} — {{.Size}} × {{.Qty}}</span>
      <span>{{money .Price}}</span>
    </li>
    {{end}}
  </ul>
  <p class="cart-drawer__subtotal">Subtotal {{money .Quote.Subtotal}}</p>
  {{else}}
  <p class="cart-drawer__empty">Your bag is empty.</p>
  {{end}}
</aside>
`))

var pageTmpl = template.Must(template.New("cart-page").Funcs(funcs).Parse(`<section class="cart-page">
  <h1>Shopping Bag</h1>
  {{if .Items}}
  <table>
    {{range .Items}}
    <tr data-id="{{.ID}}" data-size="{{.Size}}">
      <td><img src="{{.Image}}" alt="{{.Name}}"></td>
      <td>{{.Name}}<br><small>{{.Size}}</small></td>
      <td>
        <button class="qty-dec">−</button>
        <span>{{.Qty}}</span>
        <button class="qty-inc">+</button>
      </td>
      <td>{{money .Price}}</td>
      <td><button class="remove">Remove</button></td>
    </tr>
    {{end}}
  </table>
  <dl class="cart-page__totals">
    <dt>Subtotal</dt><dd>{{money .Quote.Subtotal}}</dd>
    {{if gt .Quote.Discount 0.0}}<dt>Discount</dt><dd>−{{money .Quote.Discount}}</dd>{{end}}
    <dt>Shipping</dt><dd>{{if gt .Quote.Shipping 0.0}}{{money .Quote.Shipping}}{{else}}Free{{end}}</dd>
    <dt>Total</dt><dd>{{money .Quote.Total}}</dd>
  </dl>
  {{else}}
  <p class="cart-page__empty">Your bag is empty.</p>
  {{end}}
</section>
`))

var sidebarTmpl = template.Must(template.New("checkout-sidebar").Funcs(funcs).Parse(`<aside class="checkout-sidebar">
  <h2>Order Summary</h2>
  <ul>
    {{range .Items}}
    <li>{{.Name}} ({{.Size}}) × {{.Qty}} — {{money .Price}}</li>
    {{end}}
  </ul>
  <dl>
    <dt>Subtotal</dt><dd>{{money .Quote.Subtotal}}</dd>
    <dt>Shipping</dt><dd>{{if gt .Quote.Shipping 0.0}}{{money .Quote.Shipping}}{{else}}Free{{end}}</dd>
    <dt>Total</dt><dd>{{money .Quote.Total}}</dd>
  </dl>
</aside>
`))
