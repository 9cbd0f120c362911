package shaders

const fragmentHeader = `#version 410 core

uniform vec4 u_Color;
uniform vec4 u_Effect;
uniform float u_Time;

in vec4 fs_Pos;
in vec4 fs_Nor;
in vec4 fs_LightVec;
in vec4 fs_Col;
in float fs_Disp;

out vec4 out_Col;

float diffuse() {
    float d = dot(normalize(fs_Nor), normalize(fs_LightVec));
    return clamp(d, 0.0, 1.0) * 0.8 + 0.2;
}
`

const lambertFragment = fragmentHeader + `
void main() {
    out_Col = vec4(u_Color.rgb * diffuse(), u_Color.a);
}
`

const perlinFragment = fragmentHeader + `
vec3 gradient(vec3 cell) {
    vec3 h = fract(sin(vec3(dot(cell, vec3(127.1, 311.7, 74.7)),
                            dot(cell, vec3(269.5, 183.3, 246.1)),
                            dot(cell, vec3(113.5, 271.9, 124.6)))) * 43758.5453);
    return normalize(h * 2.0 - 1.0);
}

float perlin(vec3 p) {
    vec3 i = floor(p);
    vec3 f = fract(p);
    vec3 u = f * f * f * (f * (f * 6.0 - 15.0) + 10.0);
    float n000 = dot(gradient(i + vec3(0, 0, 0)), f - vec3(0, 0, 0));
    float n100 = dot(gradient(i + vec3(1, 0, 0)), f - vec3(1, 0, 0));
    float n010 = dot(gradient(i + vec3(0, 1, 0)), f - vec3(0, 1, 0));
    float n110 = dot(gradient(i + vec3(1, 1, 0)), f - vec3(1, 1, 0));
    float n001 = dot(gradient(i + vec3(0, 0, 1)), f - vec3(0, 0, 1));
    float n101 = dot(gradient(i + vec3(1, 0, 1)), f - vec3(1, 0, 1));
    float n011 = dot(gradient(i + vec3(0, 1, 1)), f - vec3(0, 1, 1));
    float n111 = dot(gradient(i + vec3(1, 1, 1)), f - vec3(1, 1, 1));
    return mix(mix(mix(n000, n100, u.x), mix(n010, n110, u.x), u.y),
               mix(mix(n001, n101, u.x), mix(n011, n111, u.x), u.y), u.z);
}

void main() {
    float n = perlin(fs_Pos.xyz * 4.0 + vec3(u_Time * 0.01));
    vec3 c = mix(u_Color.rgb, u_Effect.rgb, 0.5 + 0.5 * n);
    out_Col = vec4(c * diffuse(), u_Color.a);
}
`

const worleyFragment = fragmentHeader + `
vec3 feature(vec3 cell) {
    return fract(sin(vec3(dot(cell, vec3(12.9898, 78.233, 45.164)),
                          dot(cell, vec3(93.989, 67.345, 12.345)),
                          dot(cell, vec3(39.346, 11.135, 83.155)))) * 43758.5453);
}

float worley(vec3 p) {
    vec3 i = floor(p);
    vec3 f = fract(p);
    float best = 1.0;
    for (int z = -1; z <= 1; z++)
    for (int y = -1; y <= 1; y++)
    for (int x = -1; x <= 1; x++) {
        vec3 o = vec3(x, y, z);
        best = min(best, length(o + feature(i + o) - f));
    }
    return best;
}

void main() {
    float d = worley(fs_Pos.xyz * 5.0);
    vec3 c = mix(u_Effect.rgb, u_Color.rgb, clamp(d, 0.0, 1.0));
    out_Col = vec4(c * diffuse(), u_Color.a);
}
`

const customFragment = fragmentHeader + `
void main() {
    float bands = 0.5 + 0.5 * sin(fs_Pos.y * 20.0 + u_Time * 0.1);
    vec3 c = mix(u_Color.rgb, vec3(1.0) - u_Color.rgb, bands * u_Effect.x);
    out_Col = vec4(c * diffuse(), u_Color.a);
}
`

// fireball blends from the base color at the surface to the effect color at
// the tips of the displacement.
const fireballFragment = fragmentHeader + `
void main() {
    float heat = clamp(fs_Disp * 2.0, 0.0, 1.0);
    vec3 core = u_Color.rgb;
    vec3 flame = mix(core, u_Effect.rgb, heat);
    float rim = 1.0 - abs(dot(normalize(fs_Nor.xyz), vec3(0.0, 0.0, 1.0)));
    out_Col = vec4(flame + rim * 0.3 * u_Effect.rgb, u_Color.a);
}
`
