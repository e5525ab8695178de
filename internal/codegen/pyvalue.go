package codegen

// pyValueSupport is the dynamic fallback emitted once per unit when
// any binding degrades past concrete inference. It mirrors the source
// language's primitive and collection kinds and carries the operator,
// ordering and hashing contracts the native target types would:
// cross-kind numeric equality, a total order that sorts NaN last, and
// integral floats hashing like their integer value.
const pyValueSupport = `#[derive(Debug, Clone)]
pub enum PyValue {
    None,
    Bool(bool),
    Int(i64),
    Float(f64),
    Str(String),
    List(Vec<PyValue>),
    Dict(Vec<(PyValue, PyValue)>),
}

impl PyValue {
    pub fn is_truthy(&self) -> bool {
        match self {
            PyValue::None => false,
            PyValue::Bool(b) => *b,
            PyValue::Int(i) => *i != 0,
            PyValue::Float(f) => *f != 0.0,
            PyValue::Str(s) => !s.is_empty(),
            PyValue::List(v) => !v.is_empty(),
            PyValue::Dict(d) => !d.is_empty(),
        }
    }

    pub fn as_int(&self) -> i64 {
        match self {
            PyValue::Bool(b) => *b as i64,
            PyValue::Int(i) => *i,
            PyValue::Float(f) => *f as i64,
            PyValue::Str(s) => s.trim().parse().unwrap_or(0),
            _ => 0,
        }
    }

    pub fn as_float(&self) -> f64 {
        match self {
            PyValue::Bool(b) => *b as i64 as f64,
            PyValue::Int(i) => *i as f64,
            PyValue::Float(f) => *f,
            PyValue::Str(s) => s.trim().parse().unwrap_or(0.0),
            _ => 0.0,
        }
    }

    pub fn py_floordiv(self, rhs: PyValue) -> PyValue {
        match (&self, &rhs) {
            (PyValue::Int(a), PyValue::Int(b)) => {
                let q = a / b;
                let r = a % b;
                if r != 0 && (r < 0) != (*b < 0) {
                    PyValue::Int(q - 1)
                } else {
                    PyValue::Int(q)
                }
            }
            _ => match (self.num(), rhs.num()) {
                (Some(a), Some(b)) => PyValue::Float((a / b).floor()),
                _ => PyValue::None,
            },
        }
    }

    pub fn py_pow(self, rhs: PyValue) -> PyValue {
        match (&self, &rhs) {
            (PyValue::Int(a), PyValue::Int(b)) if *b >= 0 => PyValue::Int(a.pow(*b as u32)),
            _ => match (self.num(), rhs.num()) {
                (Some(a), Some(b)) => PyValue::Float(a.powf(b)),
                _ => PyValue::None,
            },
        }
    }

    pub fn get_item(&self, index: PyValue) -> PyValue {
        match self {
            PyValue::List(v) => {
                let i = index.as_int();
                let idx = if i < 0 { v.len().saturating_sub((-i) as usize) } else { i as usize };
                v.get(idx).cloned().unwrap_or(PyValue::None)
            }
            PyValue::Dict(d) => d
                .iter()
                .find(|(k, _)| *k == index)
                .map(|(_, v)| v.clone())
                .unwrap_or(PyValue::None),
            PyValue::Str(s) => {
                let i = index.as_int();
                let idx = if i < 0 { s.chars().count().saturating_sub((-i) as usize) } else { i as usize };
                s.chars().nth(idx).map(|c| PyValue::Str(c.to_string())).unwrap_or(PyValue::None)
            }
            _ => PyValue::None,
        }
    }

    pub fn set_item(&mut self, key: PyValue, value: PyValue) {
        match self {
            PyValue::List(v) => {
                let i = key.as_int();
                let idx = if i < 0 { v.len().saturating_sub((-i) as usize) } else { i as usize };
                if idx < v.len() {
                    v[idx] = value;
                }
            }
            PyValue::Dict(d) => {
                for pair in d.iter_mut() {
                    if pair.0 == key {
                        pair.1 = value;
                        return;
                    }
                }
                d.push((key, value));
            }
            _ => {}
        }
    }

    fn num(&self) -> Option<f64> {
        match self {
            PyValue::Bool(b) => Some(*b as i64 as f64),
            PyValue::Int(i) => Some(*i as f64),
            PyValue::Float(f) => Some(*f),
            _ => None,
        }
    }
}

impl std::fmt::Display for PyValue {
    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {
        match self {
            PyValue::None => write!(f, "None"),
            PyValue::Bool(true) => write!(f, "True"),
            PyValue::Bool(false) => write!(f, "False"),
            PyValue::Int(i) => write!(f, "{}", i),
            PyValue::Float(v) => {
                if v.fract() == 0.0 && v.is_finite() {
                    write!(f, "{:.1}", v)
                } else {
                    write!(f, "{}", v)
                }
            }
            PyValue::Str(s) => write!(f, "{}", s),
            PyValue::List(items) => {
                write!(f, "[")?;
                for (i, item) in items.iter().enumerate() {
                    if i > 0 {
                        write!(f, ", ")?;
                    }
                    match item {
                        PyValue::Str(s) => write!(f, "'{}'", s)?,
                        other => write!(f, "{}", other)?,
                    }
                }
                write!(f, "]")
            }
            PyValue::Dict(pairs) => {
                write!(f, "{{")?;
                for (i, (k, v)) in pairs.iter().enumerate() {
                    if i > 0 {
                        write!(f, ", ")?;
                    }
                    write!(f, "{}: {}", k, v)?;
                }
                write!(f, "}}")
            }
        }
    }
}

impl PartialEq for PyValue {
    fn eq(&self, other: &Self) -> bool {
        match (self.num(), other.num()) {
            (Some(a), Some(b)) => return a == b,
            _ => {}
        }
        match (self, other) {
            (PyValue::None, PyValue::None) => true,
            (PyValue::Str(a), PyValue::Str(b)) => a == b,
            (PyValue::List(a), PyValue::List(b)) => a == b,
            (PyValue::Dict(a), PyValue::Dict(b)) => {
                a.len() == b.len() && a.iter().all(|(k, v)| {
                    b.iter().any(|(k2, v2)| k == k2 && v == v2)
                })
            }
            _ => false,
        }
    }
}

impl PartialOrd for PyValue {
    fn partial_cmp(&self, other: &Self) -> Option<std::cmp::Ordering> {
        use std::cmp::Ordering;
        if let (Some(a), Some(b)) = (self.num(), other.num()) {
            // Total order over floats: NaN sorts after everything.
            return Some(match (a.is_nan(), b.is_nan()) {
                (true, true) => Ordering::Equal,
                (true, false) => Ordering::Greater,
                (false, true) => Ordering::Less,
                _ => a.partial_cmp(&b).unwrap(),
            });
        }
        match (self, other) {
            (PyValue::Str(a), PyValue::Str(b)) => a.partial_cmp(b),
            (PyValue::List(a), PyValue::List(b)) => a.partial_cmp(b),
            _ => None,
        }
    }
}

macro_rules! py_arith {
    ($trait:ident, $method:ident, $op:tt) => {
        impl std::ops::$trait for PyValue {
            type Output = PyValue;
            fn $method(self, rhs: PyValue) -> PyValue {
                match (&self, &rhs) {
                    (PyValue::Int(a), PyValue::Int(b)) => PyValue::Int(a $op b),
                    _ => match (self.num(), rhs.num()) {
                        (Some(a), Some(b)) => PyValue::Float(a $op b),
                        _ => PyValue::None,
                    },
                }
            }
        }
    };
}

py_arith!(Sub, sub, -);
py_arith!(Mul, mul, *);
py_arith!(Rem, rem, %);

impl std::ops::Add for PyValue {
    type Output = PyValue;
    fn add(self, rhs: PyValue) -> PyValue {
        match (&self, &rhs) {
            (PyValue::Int(a), PyValue::Int(b)) => return PyValue::Int(a + b),
            (PyValue::Str(a), PyValue::Str(b)) => return PyValue::Str(format!("{}{}", a, b)),
            (PyValue::List(a), PyValue::List(b)) => {
                let mut out = a.clone();
                out.extend(b.iter().cloned());
                return PyValue::List(out);
            }
            _ => {}
        }
        match (self.num(), rhs.num()) {
            (Some(a), Some(b)) => PyValue::Float(a + b),
            _ => PyValue::None,
        }
    }
}

impl std::ops::Div for PyValue {
    type Output = PyValue;
    fn div(self, rhs: PyValue) -> PyValue {
        match (self.num(), rhs.num()) {
            (Some(a), Some(b)) => PyValue::Float(a / b),
            _ => PyValue::None,
        }
    }
}

impl From<i64> for PyValue {
    fn from(v: i64) -> Self { PyValue::Int(v) }
}
impl From<f64> for PyValue {
    fn from(v: f64) -> Self { PyValue::Float(v) }
}
impl From<bool> for PyValue {
    fn from(v: bool) -> Self { PyValue::Bool(v) }
}
impl From<String> for PyValue {
    fn from(v: String) -> Self { PyValue::Str(v) }
}
impl From<&str> for PyValue {
    fn from(v: &str) -> Self { PyValue::Str(v.to_string()) }
}
impl<T: Into<PyValue>> From<Vec<T>> for PyValue {
    fn from(v: Vec<T>) -> Self {
        PyValue::List(v.into_iter().map(Into::into).collect())
    }
}
`
