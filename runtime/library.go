package runtime

// preludeSource is evaluated into the global scope after the primitives.
var preludeSource = []string{
	`
let map(f, items) = {
  let out = ()
  for item in items {
    out += (f(item),)
  }
  out
}
`,
	`
let filter(keep, items) = {
  let out = ()
  for item in items {
    if keep(item) {
      out += (item,)
    }
  }
  out
}
`,
	`
let fold(f, items, init: none) = {
  let acc = init
  for item in items {
    acc = f(acc, item)
  }
  acc
}
`,
	`
let join(items, sep: "") = {
  let out = ""
  let first = true
  for item in items {
    if not first {
      out += sep
    }
    out += str(item)
    first = false
  }
  out
}
`,
}
